package matrix

// DeviceMatrix is the view a device stamps into. Indices are 1-based, 0 is ground.
type DeviceMatrix interface {
	AddElement(i, j int, value float64)
	SetElement(i, j int, value float64)
	AddRHS(i int, value float64)
}
