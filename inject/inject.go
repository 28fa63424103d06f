package inject

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/malshatti44/DA-Studio/auth"
	"github.com/malshatti44/DA-Studio/config"
	"github.com/malshatti44/DA-Studio/database"
	"github.com/malshatti44/DA-Studio/feed"
	"github.com/malshatti44/DA-Studio/gemini"
	handler "github.com/malshatti44/DA-Studio/handlers"
	"github.com/malshatti44/DA-Studio/imaging"
	"github.com/malshatti44/DA-Studio/log"
	"github.com/malshatti44/DA-Studio/models"
	"github.com/malshatti44/DA-Studio/page"
	"github.com/malshatti44/DA-Studio/param"
	"github.com/malshatti44/DA-Studio/storage"
	"github.com/malshatti44/DA-Studio/studio"
	"github.com/samber/do"
)

// FilesRoute is where the file storage backend's archive is served.
const FilesRoute = "/generated"

func Setup(ctx context.Context, settings config.Settings) *do.Injector {
	log := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		},
	})
	do.ProvideValue[config.Settings](injector, settings)

	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return awsconfig.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		return ssm.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*s3.Client](injector, func(i *do.Injector) (*s3.Client, error) {
		return s3.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[param.Fetcher](injector, func(i *do.Injector) (param.Fetcher, error) {
		return param.NewParameterStoreFetcher(do.MustInvoke[*ssm.Client](i)), nil
	})

	do.Provide[*database.DB](injector, func(i *do.Injector) (*database.DB, error) {
		db, err := database.Open(settings.DatabaseDriver, settings.DatabaseURL, settings.DatabaseDebug)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		return db, nil
	})
	do.Provide[*database.Templates](injector, func(i *do.Injector) (*database.Templates, error) {
		return database.NewTemplates(do.MustInvoke[*database.DB](i)), nil
	})
	do.Provide[*database.Productions](injector, func(i *do.Injector) (*database.Productions, error) {
		return database.NewProductions(do.MustInvoke[*database.DB](i)), nil
	})

	do.Provide[storage.Uploader](injector, newUploader(ctx, settings))

	do.Provide[*studio.Registry](injector, func(i *do.Injector) (*studio.Registry, error) {
		archive, err := do.Invoke[storage.Uploader](i)
		if err != nil {
			return nil, err
		}
		reg := studio.NewRegistry(studio.Options{
			Templates:   do.MustInvoke[*database.Templates](i),
			Productions: do.MustInvoke[*database.Productions](i),
			Archive:     archive,
			RunTimeout:  settings.GenerationTimeout,
			IdleTimeout: settings.SessionIdleTimeout,
		})
		reg.StartEviction(ctx, settings.SessionIdleTimeout/4)
		return reg, nil
	})

	do.Provide[*auth.Gate](injector, func(i *do.Injector) (*auth.Gate, error) {
		opts := gemini.Options{
			TextModel:  settings.TextModel,
			ImageModel: settings.ImageModel,
			ImageSize:  models.ImageSize(settings.ImageSize),
		}
		gate := auth.NewGate(func(ctx context.Context, apiKey string) (studio.Generator, error) {
			client, err := gemini.Dial(ctx, apiKey, opts)
			if err != nil {
				return nil, err
			}
			if err := client.Verify(ctx); err != nil {
				return nil, err
			}
			return client, nil
		})

		sources := []auth.CredentialSource{auth.EnvCredential(settings.GeminiAPIKey)}
		if settings.GeminiAPIKeyParam != "" {
			fetcher, err := do.Invoke[param.Fetcher](i)
			if err != nil {
				log.Warn("parameter store unavailable", "error", err)
			} else {
				sources = append(sources, auth.ParameterCredential(fetcher, settings.GeminiAPIKeyParam))
			}
		}
		_ = gate.Bootstrap(ctx, sources...)
		return gate, nil
	})
	do.Provide[*auth.Sessions](injector, func(i *do.Injector) (*auth.Sessions, error) {
		return auth.NewSessions(auth.SessionOpts{
			Secret:         settings.JWTSecret,
			TokenDuration:  settings.SessionTTL,
			CookieDuration: settings.CookieDuration,
			SecureCookies:  settings.SecureCookies,
		})
	})

	do.Provide[*imaging.Normalizer](injector, func(i *do.Injector) (*imaging.Normalizer, error) {
		return imaging.NewNormalizer(settings.MaxImageDimension, settings.MaxImagePixels), nil
	})
	do.Provide[*page.Templator](injector, func(i *do.Injector) (*page.Templator, error) {
		return page.NewTemplator(), nil
	})
	do.Provide[*feed.Generator](injector, func(i *do.Injector) (*feed.Generator, error) {
		return feed.NewGenerator(do.MustInvoke[*database.Productions](i), settings.BaseURL, settings.ProductionsPerPage), nil
	})

	do.Provide[*handler.Handler](injector, func(i *do.Injector) (*handler.Handler, error) {
		return handler.NewHandler(handler.Options{
			Registry:   do.MustInvoke[*studio.Registry](i),
			Gate:       do.MustInvoke[*auth.Gate](i),
			Normalizer: do.MustInvoke[*imaging.Normalizer](i),
			History:    do.MustInvoke[*database.Productions](i),
			Feed:       do.MustInvoke[*feed.Generator](i),
			Pages:      do.MustInvoke[*page.Templator](i),
			DB:         do.MustInvoke[*database.DB](i),
			PerPage:    settings.ProductionsPerPage,
		}), nil
	})

	return injector
}

// newUploader builds the archive for STORAGE_BACKEND. The "none" backend
// yields a nil uploader and runs are not archived.
func newUploader(ctx context.Context, settings config.Settings) do.Provider[storage.Uploader] {
	return func(i *do.Injector) (storage.Uploader, error) {
		switch settings.StorageBackend {
		case "file":
			return storage.NewFileUploader(settings.StorageDir, strings.TrimSuffix(settings.BaseURL, "/")+FilesRoute)
		case "gcs":
			return storage.NewGCSUploader(ctx, settings.GCSProjectID, settings.GCSBucket, settings.StoragePrefix)
		case "s3":
			return &storage.S3Uploader{
				Client:     do.MustInvoke[*s3.Client](i),
				Bucket:     settings.S3Bucket,
				UploadPath: settings.StoragePrefix,
				PublicURL:  settings.S3PublicURL,
			}, nil
		default:
			return nil, nil
		}
	}
}
