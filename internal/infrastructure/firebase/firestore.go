package firebase

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	appConfig "github.com/mansoorceksport/circuitbot/internal/config"
	"google.golang.org/api/option"
)

// NewFirestoreClient initializes the Firebase Admin SDK from a service
// account given in config and returns its Firestore client.
func NewFirestoreClient(ctx context.Context, cfg appConfig.FirebaseConfig) (*firestore.Client, error) {
	credentials, err := credentialsJSON(cfg)
	if err != nil {
		return nil, err
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, option.WithCredentialsJSON(credentials))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firestore client: %w", err)
	}
	return client, nil
}

// credentialsJSON builds a service account document. The private key is
// stored base64 encoded so it survives env files.
func credentialsJSON(cfg appConfig.FirebaseConfig) ([]byte, error) {
	privateKey, err := base64.StdEncoding.DecodeString(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid FIREBASE_PRIVATE_KEY: %w", err)
	}

	return json.Marshal(map[string]string{
		"type":         "service_account",
		"project_id":   cfg.ProjectID,
		"private_key":  string(privateKey),
		"client_email": cfg.ClientEmail,
		"token_uri":    "https://oauth2.googleapis.com/token",
	})
}
