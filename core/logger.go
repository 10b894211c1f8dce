package core

// Logger abstracts the application logger so delivery surfaces can swap the
// console implementation for an error-reporting service in production.
//
// expected args: error | map[string]interface{} | session user (picked up by
// implementations that track the acting person).
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
