package models

import "github.com/google/uuid"

// AppConfigCollection is the default collection app configs are cached in.
const AppConfigCollection = "dittoappconfigs"

// Connection modes of an app config.
const (
	AppConfigModeOnline  = "online"
	AppConfigModeOffline = "offline"
)

// AppConfig describes how a client connects to one remote application.
type AppConfig struct {
	ID                      string `json:"_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name                    string `json:"name" example:"Field sync"`
	AppID                   string `json:"appId" example:"b3f1c2d4-app"`
	AuthToken               string `json:"authToken" example:"token-123"`
	AuthURL                 string `json:"authUrl" example:"https://auth.example.com"`
	WebsocketURL            string `json:"websocketUrl" example:"wss://sync.example.com"`
	HTTPAPIURL              string `json:"httpApiUrl" example:"https://api.example.com"`
	HTTPAPIKey              string `json:"httpApiKey" example:"key-123"`
	MongoDBConnectionString string `json:"mongoDbConnectionString" example:"mongodb://localhost:27017"`
	Mode                    string `json:"mode" example:"online"`
	AllowUntrustedCerts     bool   `json:"allowUntrustedCerts" example:"false"`
} // @name AppConfig

// NewAppConfig returns an empty online config with a fresh id.
func NewAppConfig() AppConfig {
	return AppConfig{
		ID:   uuid.New().String(),
		Mode: AppConfigModeOnline,
	}
}

// DocumentID returns the primary key of the config.
func (a AppConfig) DocumentID() string { return a.ID }

// AppConfigSchema validates stored app config documents.
const AppConfigSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "AppConfig",
  "type": "object",
  "required": [
    "_id", "name", "appId", "authToken", "authUrl", "websocketUrl",
    "httpApiUrl", "httpApiKey", "mongoDbConnectionString", "mode",
    "allowUntrustedCerts"
  ],
  "properties": {
    "_id": {"type": "string", "minLength": 1},
    "name": {"type": "string"},
    "appId": {"type": "string"},
    "authToken": {"type": "string"},
    "authUrl": {"type": "string"},
    "websocketUrl": {"type": "string"},
    "httpApiUrl": {"type": "string"},
    "httpApiKey": {"type": "string"},
    "mongoDbConnectionString": {"type": "string"},
    "mode": {"type": "string"},
    "allowUntrustedCerts": {"type": "boolean"}
  }
}`

// AppConfigRequest is the body of save, add and update calls. The id is
// optional on save and add; a missing id is generated.
type AppConfigRequest struct {
	ID                      string `json:"_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name                    string `json:"name" binding:"required" example:"Field sync"`
	AppID                   string `json:"appId" example:"b3f1c2d4-app"`
	AuthToken               string `json:"authToken" example:"token-123"`
	AuthURL                 string `json:"authUrl" example:"https://auth.example.com"`
	WebsocketURL            string `json:"websocketUrl" example:"wss://sync.example.com"`
	HTTPAPIURL              string `json:"httpApiUrl" example:"https://api.example.com"`
	HTTPAPIKey              string `json:"httpApiKey" example:"key-123"`
	MongoDBConnectionString string `json:"mongoDbConnectionString" example:"mongodb://localhost:27017"`
	Mode                    string `json:"mode" binding:"omitempty,oneof=online offline" example:"online"`
	AllowUntrustedCerts     bool   `json:"allowUntrustedCerts" example:"false"`
} // @name AppConfigRequest

// ToAppConfig converts the request, generating an id and defaulting the mode.
func (r AppConfigRequest) ToAppConfig() AppConfig {
	cfg := NewAppConfig()
	if r.ID != "" {
		cfg.ID = r.ID
	}
	if r.Mode != "" {
		cfg.Mode = r.Mode
	}
	cfg.Name = r.Name
	cfg.AppID = r.AppID
	cfg.AuthToken = r.AuthToken
	cfg.AuthURL = r.AuthURL
	cfg.WebsocketURL = r.WebsocketURL
	cfg.HTTPAPIURL = r.HTTPAPIURL
	cfg.HTTPAPIKey = r.HTTPAPIKey
	cfg.MongoDBConnectionString = r.MongoDBConnectionString
	cfg.AllowUntrustedCerts = r.AllowUntrustedCerts
	return cfg
}

// AppConfigListResponse is the cached list of configs.
type AppConfigListResponse struct {
	Items []AppConfig `json:"items"`
	Count int         `json:"count" example:"1"`
} // @name AppConfigListResponse

// MutationResponse reports the document a save or delete touched.
type MutationResponse struct {
	ID string `json:"_id" example:"550e8400-e29b-41d4-a716-446655440000"`
} // @name MutationResponse
