package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"company-workspace-backend/pkg/config"
	"company-workspace-backend/pkg/logger"
	"company-workspace-backend/pkg/utils"
)

// Recovery turns a panic into a 500 response. Development responses carry
// the panic value and stack; production ones stay generic.
func Recovery(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				stack := debug.Stack()
				logger.HTTP().WithField("path", r.URL.Path).
					WithField("panic", fmt.Sprint(rec)).
					Errorf("recovered from panic\n%s", stack)

				if cfg.IsDevelopment() {
					utils.WriteErrorResponseWithCode(w, http.StatusInternalServerError,
						"INTERNAL_SERVER_ERROR",
						fmt.Sprintf("Internal server error: %v", rec),
						string(stack))
					return
				}
				utils.WriteInternalServerErrorResponse(w, "Internal server error occurred")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
