// Package firebaseapp initializes the Firebase Admin SDK app shared by the
// FCM transport and the Firestore store.
package firebaseapp

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"bloodconnect/internal/config"
)

// New creates the Firebase app. Credentials are taken from the first
// source that is set:
//  1. GCP_SA_KEY, a full service account JSON document
//  2. FIREBASE_PROJECT_ID + FIREBASE_CLIENT_EMAIL + FIREBASE_PRIVATE_KEY
//  3. GOOGLE_APPLICATION_CREDENTIALS, a path to the JSON file
//  4. application default credentials
func New(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	var fbCfg *firebase.Config
	if cfg.FirebaseProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: cfg.FirebaseProjectID}
	}

	app, err := firebase.NewApp(ctx, fbCfg, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	return app, nil
}

func clientOptions(cfg *config.Config) []option.ClientOption {
	switch {
	case cfg.FirebaseCredsJSON != "":
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.FirebaseCredsJSON))}
	case cfg.FirebaseProjectID != "" && cfg.FirebaseClientEmail != "" && cfg.FirebasePrivateKey != "":
		return []option.ClientOption{option.WithCredentialsJSON(serviceAccountJSON(
			cfg.FirebaseProjectID, cfg.FirebaseClientEmail, cfg.FirebasePrivateKey))}
	case cfg.FirebaseCredsFile != "":
		return []option.ClientOption{option.WithCredentialsFile(cfg.FirebaseCredsFile)}
	default:
		return nil
	}
}

// serviceAccountJSON builds the credentials document the SDK expects from
// the three env values. Keys stored in .env files carry literal "\n"
// sequences instead of newlines.
func serviceAccountJSON(projectID, clientEmail, privateKey string) []byte {
	privateKey = strings.ReplaceAll(privateKey, "\\n", "\n")

	return []byte(fmt.Sprintf(`{
		"type": "service_account",
		"project_id": %q,
		"private_key": %q,
		"client_email": %q,
		"token_uri": "https://oauth2.googleapis.com/token"
	}`, projectID, privateKey, clientEmail))
}
