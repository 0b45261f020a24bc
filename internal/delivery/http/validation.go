package http

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// knownGoals are the connection goals the scoring engine understands. Other
// values would always score 0 on the goal component, so they are rejected at
// the door.
var knownGoals = map[string]struct{}{
	"networking":               {},
	"professional_development": {},
	"mentorship":               {},
	"friendship":               {},
	"socialising":              {},
	"hobbies":                  {},
}

// registerValidators installs custom binding rules on gin's validator
// engine.
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("connection_goal", func(fl validator.FieldLevel) bool {
		_, known := knownGoals[fl.Field().String()]
		return known
	})
}
