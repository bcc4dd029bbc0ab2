package utils

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/mmdatafocus/inventory_backend/appctx"
)

type JwtCustomClaim struct {
	ID    int    `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.StandardClaims
}

func (c *JwtCustomClaim) Actor() appctx.Actor {
	return appctx.Actor{
		UserId: c.ID,
		Login:  c.Login,
		Name:   c.Name,
		Role:   c.Role,
	}
}

var jwtSecret = []byte(getJwtSecret())

func getJwtSecret() string {
	secret := os.Getenv("API_SECRET")
	if secret == "" {
		return "Inventory-Secret"
	}
	return secret
}

func tokenLifespan() time.Duration {
	hours, err := strconv.Atoi(os.Getenv("TOKEN_HOUR_LIFESPAN"))
	if err != nil || hours <= 0 {
		hours = 12
	}
	return time.Duration(hours) * time.Hour
}

func JwtGenerate(actor appctx.Actor) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaim{
		ID:    actor.UserId,
		Login: actor.Login,
		Name:  actor.Name,
		Role:  actor.Role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(tokenLifespan()).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	})

	token, err := t.SignedString(jwtSecret)
	if err != nil {
		return "", err
	}

	return token, nil
}

func JwtValidate(token string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(token, &JwtCustomClaim{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("there's a problem with the signing method")
		}
		return jwtSecret, nil
	})
}
