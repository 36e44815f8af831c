package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"hms/src/common"
	"hms/src/lib"
	"hms/src/models"
	"hms/src/types"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// GenerateJWT issues a short-lived HS256 token for a staff member. The same
// JWT_SECRET key verifies it in the auth middleware.
func GenerateJWT(email string, id uint, hospital uint, role types.StaffRole, ward *uint) (string, error) {
	claims := types.Claims{
		Email:    email,
		Role:     role,
		Hospital: hospital,
		Ward:     ward,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(int(id)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

const occupancyCacheTTL = 30 * time.Second

func occupancyCacheKey(wardID uint) string {
	return fmt.Sprintf("ward:%d:occupancy", wardID)
}

// CachedWardOccupancy reads ward occupancy through a short-lived redis cache.
// Staleness is bounded by the TTL; counts are advisory, never authoritative.
func CachedWardOccupancy(svc *common.Service, actor types.Actor, wardID uint) (*models.WardStats, error) {
	rd := lib.GetRedisClient()
	key := occupancyCacheKey(wardID)
	if cached, err := rd.Get(context.Background(), key).Result(); err == nil {
		var stats models.WardStats
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			return &stats, nil
		}
	}
	stats, err := svc.WardOccupancy(actor, wardID)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(stats)
	if err == nil {
		if err := rd.Set(context.Background(), key, string(raw), occupancyCacheTTL).Err(); err != nil {
			log.Printf("Error caching occupancy for ward %d: %s\n", wardID, err.Error())
		}
	}
	return stats, nil
}
