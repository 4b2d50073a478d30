package device

// Motion carries gyroscope and accelerometer state. Gyro values are degrees
// per second, acceleration is in units of G. By sensor convention each
// acceleration component sits in [-1.0, 1.0], but values are passed through
// unclamped; range validation belongs to the producer.
type Motion struct {
	// Negative = pitch forward
	GyroPitch float32 `json:"gyroPitch"`
	// Negative = clockwise
	GyroRoll float32 `json:"gyroRoll"`
	// Negative = clockwise
	GyroYaw float32 `json:"gyroYaw"`
	// -1.0 = left grip down, 1.0 = right grip down
	AccelX float32 `json:"accelX"`
	// -1.0 = face up, 1.0 = face down
	AccelY float32 `json:"accelY"`
	// -1.0 = triggers down, 1.0 = grips down
	AccelZ float32 `json:"accelZ"`
}

// MotionInfo advertises which motion sensors a component reports.
type MotionInfo struct {
	HasGyro  bool `json:"hasGyro"`
	HasAccel bool `json:"hasAccel"`
}
