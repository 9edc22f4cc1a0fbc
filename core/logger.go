package core

type (
	// Logger logs messages and forwards them to an error tracker.
	// expected args: error, map[string]interface{}, Person
	Logger interface {
		Debug(msg string, args ...interface{})
		Info(msg string, args ...interface{})
		Warn(msg string, args ...interface{})
		Error(msg string, args ...interface{})
		Fatal(msg string, args ...interface{})
	}

	// Person identifies the session a log entry belongs to.
	Person struct {
		ID       string
		Username string
		Email    string
	}
)
