package jwt

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"
)

type JWTTestSuite struct {
	suite.Suite
	auth   Auth
	secret string
	userID string
}

func TestJWTSuite(t *testing.T) {
	suite.Run(t, new(JWTTestSuite))
}

func (s *JWTTestSuite) SetupTest() {
	s.secret = "test-secret"
	s.userID = "user123"
	s.auth = NewAuth(s.secret)
}

func (s *JWTTestSuite) TestNewAuth() {
	auth := NewAuth(s.secret).(*jwtAuthImpl)
	s.NotNil(auth)
	s.Equal(jwt.SigningMethodHS256, auth.signingMethod)
	s.True(auth.allowedMethods["HS256"])
}

func (s *JWTTestSuite) TestSign_Successful() {
	token, err := s.auth.Sign(s.userID)
	s.Require().NoError(err)
	s.NotEmpty(token)
	s.True(strings.HasPrefix(token, "eyJ"))
}

func (s *JWTTestSuite) TestSign_EmptyUserID() {
	token, err := s.auth.Sign("")
	s.Require().ErrorIs(err, ErrInvalidRequest)
	s.Empty(token)
}

func (s *JWTTestSuite) TestVerify_ValidToken() {
	token, err := s.auth.Sign(s.userID)
	s.Require().NoError(err)

	claims, err := s.auth.Verify(token)
	s.Require().NoError(err)
	s.Equal(s.userID, claims.UserID)
	s.NotNil(claims.ExpiresAt)
}

func (s *JWTTestSuite) TestVerify_EmptyToken() {
	_, err := s.auth.Verify("")
	s.Require().ErrorIs(err, ErrNoToken)
}

func (s *JWTTestSuite) TestVerify_GarbageToken() {
	_, err := s.auth.Verify("not-a-token")
	s.Require().ErrorIs(err, ErrInvalidToken)
}

func (s *JWTTestSuite) TestVerify_WrongSecret() {
	token, err := NewAuth("other-secret").Sign(s.userID)
	s.Require().NoError(err)

	_, err = s.auth.Verify(token)
	s.Require().ErrorIs(err, ErrInvalidToken)
}

func (s *JWTTestSuite) TestVerify_AlgorithmMismatchRejected() {
	token, err := NewAuthWithAlgorithm(s.secret, jwt.SigningMethodHS512).Sign(s.userID)
	s.Require().NoError(err)

	_, err = s.auth.Verify(token)
	s.Require().ErrorIs(err, ErrInvalidToken)
}

type MiddlewareTestSuite struct {
	suite.Suite
	auth   Auth
	engine *gin.Engine
}

func TestMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareTestSuite))
}

func (s *MiddlewareTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.auth = NewAuth("test-secret")

	s.engine = gin.New()
	s.engine.Use(Middleware(s.auth))
	s.engine.GET("/whoami", func(c *gin.Context) {
		c.JSON(200, gin.H{"userId": UserID(c)})
	})
}

func (s *MiddlewareTestSuite) TestMissingToken() {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/whoami", nil)
	s.engine.ServeHTTP(w, req)

	s.Equal(401, w.Code)
}

func (s *MiddlewareTestSuite) TestInvalidToken() {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	s.engine.ServeHTTP(w, req)

	s.Equal(401, w.Code)
}

func (s *MiddlewareTestSuite) TestValidBearerToken() {
	token, err := s.auth.Sign("user123")
	s.Require().NoError(err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	s.engine.ServeHTTP(w, req)

	s.Equal(200, w.Code)
	s.Contains(w.Body.String(), "user123")
}

func (s *MiddlewareTestSuite) TestTokenQueryParam() {
	token, err := s.auth.Sign("user123")
	s.Require().NoError(err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/whoami?token="+token, nil)
	s.engine.ServeHTTP(w, req)

	s.Equal(200, w.Code)
}
