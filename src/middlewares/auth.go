package middlewares

import (
	"hms/src/db"
	"hms/src/models"
	"hms/src/types"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

func AuthMiddleware(ctx *gin.Context) {
	bearerToken := ctx.Request.Header.Get("Authorization")
	if !strings.HasPrefix(bearerToken, "Bearer") {
		ctx.AbortWithStatus(401)
		return
	}
	reqToken := strings.Split(bearerToken, " ")[1]
	if reqToken == "" {
		ctx.AbortWithStatus(401)
		return
	}
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
		return jwtKey, nil
	})
	if err != nil {
		log.Printf("token error: %s\n", err.Error())
		if err == jwt.ErrSignatureInvalid || err == jwt.ErrTokenMalformed {
			ctx.AbortWithStatus(401)
			return
		}
		ctx.AbortWithError(401, err)
		return
	}
	if !tkn.Valid {
		ctx.AbortWithStatus(401)
		return
	}

	conn := db.GetDb()
	var staff models.Staff
	sid, err := strconv.Atoi(claims.Subject)
	if err != nil {
		log.Println("error parsing claims:", err.Error())
		ctx.AbortWithStatus(401)
		return
	}
	conn.Model(&models.Staff{}).Where(&models.Staff{ID: uint(sid)}).Find(&staff)

	if uint(sid) != staff.ID || staff.ID < 1 {
		ctx.AbortWithStatus(401)
		return
	}
	ctx.Set("email", staff.Email)
	ctx.Set("id", staff.ID)
	ctx.Set("role", staff.Role)
	ctx.Set("hospital", staff.HospitalID)
	if staff.WardID != nil {
		ctx.Set("ward", *staff.WardID)
	}
	if staff.TenantID != nil {
		ctx.Set("tenant_id", *staff.TenantID)
	}
}
