package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrUserNotFound = errors.New("usuario no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
)

// Errores del núcleo de aislamiento y autorización.
// Ninguno se degrada silenciosamente: llegan al llamador como fallos distintos.
var (
	// ErrMissingTenantContext: escritura de un registro de empresa sin empresa activa ni explícita.
	ErrMissingTenantContext = errors.New("no hay empresa activa en el contexto")
	// ErrTenantNotResolved: se pidió el almacén del tenant antes de resolverlo.
	ErrTenantNotResolved = errors.New("tenant no resuelto para este request")
	// ErrPermissionDenied: el resolvedor negó un permiso requerido.
	ErrPermissionDenied = errors.New("permiso denegado")
	// ErrModuleInactive: operación de un módulo que no está activo para el tenant.
	ErrModuleInactive = errors.New("módulo inactivo para el tenant")
	// ErrModuleDependency: se intentó activar un módulo con dependencias inactivas.
	ErrModuleDependency = errors.New("dependencias del módulo inactivas")
	// ErrSequenceContention: no se obtuvo el bloqueo del consecutivo a tiempo. Único error reintentable.
	ErrSequenceContention = errors.New("contención al reservar el consecutivo")
	// ErrInvalidSequenceKey: combinación empresa/tipo/año mal formada. No se reintenta.
	ErrInvalidSequenceKey = errors.New("clave de consecutivo inválida")
	// ErrLimitExceeded: se superó un límite del plan del tenant.
	ErrLimitExceeded = errors.New("límite del plan superado")
	// ErrSystemRole: los roles de sistema no se eliminan.
	ErrSystemRole = errors.New("los roles de sistema no se pueden eliminar")
	// ErrCompanyCycle: la jerarquía de empresas debe ser un árbol.
	ErrCompanyCycle = errors.New("la empresa padre no puede ser descendiente de la empresa")
)
