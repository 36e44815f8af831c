package main

import (
	"errors"
	"hms/src/boot"
	"hms/src/common"
	"hms/src/config"
	"hms/src/db"
	"hms/src/lib/mailer"
	"hms/src/middlewares"
	"hms/src/models"
	"hms/src/types"
	"hms/src/utils"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"regexp"
	"strconv"
	"time"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	_ "github.com/joho/godotenv/autoload"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	apiPrefix string = "/api/v1"
)

var service *common.Service

func newService() *common.Service {
	conn := db.GetDb()
	return common.NewService(conn,
		&common.TrailWriter{DB: conn},
		&mailer.SMTPNotifier{DB: conn},
	)
}

var futureDateValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	datetime, err := time.Parse(config.TIME_PARSE_FORMAT, date)
	if err != nil {
		return false
	}
	if ok {
		today := time.Now()
		if today.After(datetime) {
			return false
		}
	}
	return true
}

// actorFromContext reads the identity the auth middleware stored on the
// request context.
func actorFromContext(ctx *gin.Context) types.Actor {
	actor := types.Actor{
		ID:         ctx.GetUint("id"),
		HospitalID: ctx.GetUint("hospital"),
	}
	if role, ok := ctx.Get("role"); ok {
		actor.Role = role.(types.StaffRole)
	}
	if ward, ok := ctx.Get("ward"); ok {
		w := ward.(uint)
		actor.WardID = &w
	}
	if tenantId, ok := ctx.Get("tenant_id"); ok {
		t := tenantId.(uuid.UUID)
		actor.TenantID = &t
	}
	return actor
}

// respondError maps the error taxonomy onto HTTP statuses. Concurrency
// failures surface as 503 so clients know the request itself was fine.
func respondError(ctx *gin.Context, err error) {
	switch {
	case types.IsValidation(err):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case types.IsNotFound(err):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case types.IsConflict(err):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case types.IsConcurrency(err):
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		log.Printf("unhandled error: %s\n", err.Error())
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// withRetry re-runs an operation exactly once when it loses a race.
func withRetry(fn func() error) error {
	err := fn()
	if types.IsConcurrency(err) {
		return fn()
	}
	return err
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders)
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	return router
}

func maintenanceModeMiddleware(g *gin.Engine) *gin.Engine {
	g.Use(func(ctx *gin.Context) {
		mm := os.Getenv("MAINTENANCE_MODE")
		atoi, err := strconv.ParseBool(mm)
		if err == nil && atoi {
			err := errors.New("server is under maintenance")
			log.Println(err.Error())
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, err.Error())
			return
		}
	})
	return g
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	return apiv1
}

func guestAuthRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	guest := apiv1.Group("/auth")
	guest.
		POST("/login", func(ctx *gin.Context) {
			var body types.LoginRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			conn := db.GetDb()
			var staff models.Staff
			if err := conn.
				Where(&models.Staff{Email: body.Email}).
				First(&staff).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusUnauthorized)
					return
				}
				ctx.Status(http.StatusInternalServerError)
				return
			}
			token, err := utils.GenerateJWT(staff.Email, staff.ID, staff.HospitalID, staff.Role, staff.WardID)
			if err != nil {
				log.Printf("[AuthLogin] error: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{
				"token": token,
			})
		})
	return guest
}

func initLogger() {
	cwd, _ := os.Getwd()
	serverLogs := path.Join(cwd, "logs", "server.log")
	apiLogs := path.Join(cwd, "logs", "api.log")
	gin.ForceConsoleColor()

	f, _ := os.Create(apiLogs)
	gin.DefaultWriter = io.MultiWriter(f, os.Stdout)
	log.SetOutput(&lumberjack.Logger{
		Filename:   serverLogs,
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	})
}

func main() {
	apiEnv := os.Getenv("API_ENV")
	if apiEnv == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			panic(err)
		}
	}
	initLogger()

	boot.InitDb()
	service = newService()
	boot.InitScheduler(&mailer.SMTPNotifier{DB: db.GetDb()})

	router := setupRouter()

	appHost := os.Getenv("APP_HOST")
	if apiEnv == "local" {
		router.Use(cors.Default())
	} else {
		cc := cors.DefaultConfig()
		cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PATCH", "PUT", "DELETE", "HEAD")
		cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization", "x-secret")
		cc.AllowOriginFunc = func(origin string) bool {
			match, _ := regexp.MatchString(appHost, origin)
			if match {
				return true
			}
			match, _ = regexp.MatchString("app:mobile", origin)
			return match
		}
		cc.AllowCredentials = true
		cc.AllowAllOrigins = false
		router.Use(cors.New(cc))
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("futuredate", futureDateValidatorFunc)
	}

	router = maintenanceModeMiddleware(router)

	guestAuthRoutes(router)

	authorized := router.Group(apiPrefix)
	authorized.Use(middlewares.AuthMiddleware)
	{
		authorized = wardHandlers(authorized)
		authorized = admissionHandlers(authorized)
		authorized = appointmentHandlers(authorized)
		authorized = handoverHandlers(authorized)

		authorized.
			GET("/staff/me", func(ctx *gin.Context) {
				var staff models.Staff
				staffId := ctx.GetUint("id")
				conn := db.GetDb()
				if err := conn.
					Where(&models.Staff{ID: staffId}).
					Preload("Ward").
					First(&staff).
					Error; err != nil {
					ctx.Status(http.StatusBadRequest)
					return
				}
				ctx.JSON(http.StatusOK, gin.H{"data": staff})
			})
	}

	if os.Getenv("TLS_ENABLE") == "true" {
		cwd, _ := os.Getwd()
		certpath := path.Join(cwd, "certificates", "localhost.pem")
		keypath := path.Join(cwd, "certificates", "localhost-key.pem")
		if err := router.RunTLS(":9090", certpath, keypath); err != nil {
			log.Fatalf("Failed to start server: %s", err)
		}
	}
	if err := router.Run(":9090"); err != nil {
		log.Fatalf("Failed to start server: %s", err)
	}
}
