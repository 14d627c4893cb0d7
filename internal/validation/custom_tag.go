package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var roomIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

func init() {
	MustRegisterGin("roomid", ValidateRoomID)
	MustRegisterGinAlias("visibility", "oneof=private friends public")
}

// ValidateRoomID validates room ID format: 1-64 characters, alphanumeric with hyphens and underscores
func ValidateRoomID(fl validator.FieldLevel) bool {
	return roomIDRegex.MatchString(fl.Field().String())
}
