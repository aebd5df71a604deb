package auth

import (
	"context"

	"wtfSocial/domain"
)

const (
	actorKey  privateKey = "actor"
	claimsKey privateKey = "claims"
)

type privateKey string

// SetActor stores the acting user of the request in ctx.
func SetActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// GetActor returns the acting user stored in ctx, or the anonymous Actor.
func GetActor(ctx context.Context) domain.Actor {
	if temp := ctx.Value(actorKey); temp != nil {
		if actor, ok := temp.(domain.Actor); ok {
			return actor
		}
	}
	return domain.Actor{}
}

// SetClaims stores the verified token claims of the request in ctx.
func SetClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// GetClaims returns the verified token claims stored in ctx, or nil.
func GetClaims(ctx context.Context) *Claims {
	if temp := ctx.Value(claimsKey); temp != nil {
		if claims, ok := temp.(*Claims); ok {
			return claims
		}
	}
	return nil
}
