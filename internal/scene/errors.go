package scene

import "errors"

// ErrInvalidScene is returned for a scene description that cannot be
// rasterised.
var ErrInvalidScene = errors.New("invalid scene")
