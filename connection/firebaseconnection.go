package connection

import (
	"context"
	"fmt"

	"checklistapp/config"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"github.com/golang/glog"
	"google.golang.org/api/option"
)

// FBConnection opens the Firebase app and its Firestore client from the
// service account in cfg.
func FBConnection(ctx context.Context, cfg *config.Config) (*firebase.App, *firestore.Client, error) {
	if cfg.CredentialsFile == "" {
		return nil, nil, fmt.Errorf("environment variable GOOGLE_APPLICATION_CREDENTIALS is not set")
	}

	var fbConfig *firebase.Config
	if cfg.ProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: cfg.ProjectID}
	}
	app, err := firebase.NewApp(ctx, fbConfig, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("error getting Firestore client: %w", err)
	}

	glog.Infof("[connection]Firestore connection successful\n")
	return app, client, nil
}
