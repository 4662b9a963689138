package back

import (
	"errors"
	"net/http"

	"GrainHero/pkg/xerr"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Code    int         `json:"code"`
	Reason  string      `json:"reason,omitempty"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Result writes data on success, the CodeError on failure, and hides any
// other error behind ErrServerError.
func Result(c *gin.Context, data interface{}, err error) {
	if err == nil {
		Success(c, data)
		return
	}

	var e *xerr.CodeError
	if errors.As(err, &e) {
		c.JSON(httpStatus(e.Code), Response{
			Code:    e.Code,
			Reason:  e.Reason,
			Message: e.Message,
		})
		return
	}

	Error(c, xerr.ErrServerError.Code, xerr.ErrServerError.Message)
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    xerr.OK,
		Message: "Success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(httpStatus(code), Response{
		Code:    code,
		Message: message,
	})
}

func httpStatus(code int) int {
	switch {
	case code == xerr.OK:
		return http.StatusOK
	case code == xerr.InvalidReading:
		return http.StatusUnprocessableEntity
	case code >= 4091 && code <= 4099:
		return http.StatusConflict
	case code == xerr.StaleAssessmentRace:
		return http.StatusServiceUnavailable
	case code >= 400 && code < 600:
		return code
	default:
		return http.StatusInternalServerError
	}
}
