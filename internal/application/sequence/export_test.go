package sequence

import "time"

// SetClock fija el reloj del generador en tests.
func SetClock(g *Generator, now func() time.Time) { g.now = now }
