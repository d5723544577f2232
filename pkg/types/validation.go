package types

// ClampX clamps a horizontal coordinate into the canvas.
func ClampX(x float64) float64 {
	return clamp(x, 0, CanvasWidth)
}

// ClampY clamps a vertical coordinate into the canvas.
func ClampY(y float64) float64 {
	return clamp(y, 0, CanvasHeight)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// IsValidRole reports whether the role is one of the three known roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleDisplay, RoleController, RoleViewer:
		return true
	}
	return false
}

// IsValidElementKind reports whether the kind names a supported element.
func IsValidElementKind(kind string) bool {
	switch kind {
	case ElementRect, ElementCircle, ElementText, ElementLine, ElementArea:
		return true
	}
	return false
}
