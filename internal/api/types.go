package api

// Wire types for the portfolio backend API.

// PortfolioPublic is the public view of a portfolio returned by the
// unauthenticated lookup endpoint.
type PortfolioPublic struct {
	Name      string `json:"name"`
	CustomURL string `json:"custom_url"`
	OwnerName string `json:"owner_name"`
	IsActive  bool   `json:"is_active"`
}

// ChatRequest is the body of a visitor chat message.
type ChatRequest struct {
	PortfolioURL string `json:"portfolio_url"`
	Message      string `json:"message"`
	VisitorName  string `json:"visitor_name,omitempty"`
}

// ChatResponse carries the assistant's answer.
type ChatResponse struct {
	Response string `json:"response"`
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest authenticates an existing account.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned by register and login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// User is an account as the backend reports it.
type User struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	AuthProvider     string `json:"auth_provider,omitempty"`
	CreatedAt        string `json:"created_at,omitempty"`
	SubscriptionTier string `json:"subscription_tier,omitempty"`
	PortfoliosCount  int    `json:"portfolios_count,omitempty"`
}

// Portfolio is an owner's view of one portfolio.
type Portfolio struct {
	ID            string                 `json:"id"`
	UserID        string                 `json:"user_id"`
	Name          string                 `json:"name"`
	CustomURL     string                 `json:"custom_url"`
	ResumePath    string                 `json:"resume_path,omitempty"`
	DetailsPath   string                 `json:"details_path,omitempty"`
	IsActive      bool                   `json:"is_active"`
	IsProcessed   bool                   `json:"is_processed"`
	CreatedAt     string                 `json:"created_at,omitempty"`
	Analytics     map[string]interface{} `json:"analytics,omitempty"`
	ChatbotConfig map[string]interface{} `json:"chatbot_config,omitempty"`
	CustomDomain  string                 `json:"custom_domain,omitempty"`
}

// CreatePortfolioResponse acknowledges a portfolio upload.
type CreatePortfolioResponse struct {
	Message     string `json:"message"`
	PortfolioID string `json:"portfolio_id"`
	CustomURL   string `json:"custom_url"`
}

// MessageResponse is the generic acknowledgement envelope.
type MessageResponse struct {
	Message string `json:"message"`
}

// AnalyticsResponse summarizes visitor chat activity for one portfolio.
type AnalyticsResponse struct {
	TotalChats    int                    `json:"total_chats"`
	TotalMessages int                    `json:"total_messages"`
	Analytics     map[string]interface{} `json:"analytics,omitempty"`
}

// HealthResponse is the backend liveness probe result.
type HealthResponse struct {
	Status string `json:"status"`
}

// UpdatePortfolioParams selects which portfolio fields to change.
// Nil fields are left untouched.
type UpdatePortfolioParams struct {
	Name         *string
	CustomDomain *string
	IsActive     *bool
}
