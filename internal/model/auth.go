package model

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are JWT claims for a session-scoped host token
type SessionClaims struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	GameID    string `json:"gameId"`
	jwt.RegisteredClaims
}

// StartSessionRequest is the request body for opening a game session
type StartSessionRequest struct {
	UserID  string      `json:"userId" validate:"required,max=128"`
	GameID  string      `json:"gameId" validate:"required,max=128"`
	Context PlayContext `json:"context"`
}

// RecommendationRequest is the request body for generating recommendations
type RecommendationRequest struct {
	Context PlayContext `json:"context"`
}
