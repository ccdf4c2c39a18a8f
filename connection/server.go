package connection

import (
	"context"
	"errors"
	"net/http"
	"time"

	"checklistapp/config"
	"checklistapp/controller/auth"
	"checklistapp/controller/task"
	"checklistapp/controller/team"
	"checklistapp/controller/user"
	"checklistapp/controller/view"
	"checklistapp/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang/glog"
)

const shutdownTimeout = 10 * time.Second

func NewRouter(app *App) *gin.Engine {
	router := gin.Default()

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Api is running!"})
	})

	router.Use(cors.Default())

	requireAuth := middleware.AccessTokenMiddleware(app.Verifier)

	if app.Config.AuthProvider == config.AuthJWT {
		auth.SignInController(router, app.Auth)
		auth.SignUpController(router, app.Auth)
	}
	if app.Captcha != nil {
		auth.CaptchaController(router, app.Captcha)
	}
	auth.ProfileController(router, requireAuth, app.Repos.Users)
	task.TaskController(router, requireAuth, app.Repos.Tasks)
	team.TeamController(router, requireAuth, app.Repos.Teams)
	user.UserController(router, requireAuth, app.Repos.Users)
	view.ViewController(router, requireAuth, app.Repos, app.LiveSettings())

	return router
}

// StartServer serves until ctx is done, then drains open requests.
func StartServer(ctx context.Context, app *App) error {
	srv := &http.Server{
		Addr:    app.Config.Addr(),
		Handler: NewRouter(app),
	}

	errc := make(chan error, 1)
	go func() {
		glog.Infof("[server]listening on %s\n", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
