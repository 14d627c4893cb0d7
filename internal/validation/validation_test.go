package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/suite"
)

type ValidationTestSuite struct {
	suite.Suite
	validator *validator.Validate
}

func TestValidationTestSuite(t *testing.T) {
	suite.Run(t, new(ValidationTestSuite))
}

func (s *ValidationTestSuite) SetupTest() {
	s.validator = validator.New()
}

func (s *ValidationTestSuite) TestValidateRoomID() {
	err := Register(s.validator, "roomid", ValidateRoomID)
	s.Require().NoError(err)

	tests := []struct {
		name    string
		roomID  string
		wantErr bool
	}{
		{"valid alphanumeric", "room123", false},
		{"valid with hyphens", "room-123", false},
		{"valid with underscores", "room_123", false},
		{"valid numeric id", "42", false},
		{"valid single char", "a", false},
		{"too long", string(make([]byte, 65)), true},
		{"empty", "", true},
		{"spaces rejected", "room 123", true},
		{"slash rejected", "room/123", true},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			err := s.validator.Var(tt.roomID, "roomid")
			if tt.wantErr {
				s.Error(err)
			} else {
				s.NoError(err)
			}
		})
	}
}

func (s *ValidationTestSuite) TestFormatValidationError() {
	type req struct {
		Name string `validate:"required"`
	}

	err := s.validator.Struct(&req{})
	s.Require().Error(err)

	formatted := FormatValidationError(err)
	s.Require().Len(formatted, 1)
	s.Equal("Name", formatted[0].Field)
}
