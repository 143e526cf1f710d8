package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/lumapix/gallery/internal/gallery"
	"github.com/lumapix/gallery/internal/storage"
	"github.com/lumapix/gallery/internal/vision"
)

func storageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "endpoint",
			Usage:   "Object store endpoint",
			Value:   "storage.googleapis.com",
			EnvVars: []string{"STORAGE_ENDPOINT"},
		},
		&cli.StringFlag{
			Name:     "access-key",
			Usage:    "Object store access key",
			Required: true,
			EnvVars:  []string{"STORAGE_ACCESS_KEY"},
		},
		&cli.StringFlag{
			Name:     "secret-key",
			Usage:    "Object store secret key",
			Required: true,
			EnvVars:  []string{"STORAGE_SECRET_KEY"},
		},
		&cli.StringFlag{
			Name:    "bucket",
			Usage:   "Bucket holding gallery images and metadata",
			Value:   "cot5930-project-storage",
			EnvVars: []string{"STORAGE_BUCKET"},
		},
		&cli.StringFlag{
			Name:    "region",
			Usage:   "Bucket region",
			Value:   "us-east-1",
			EnvVars: []string{"STORAGE_REGION"},
		},
		&cli.BoolFlag{
			Name:    "use-ssl",
			Usage:   "Connect to the object store over TLS",
			Value:   true,
			EnvVars: []string{"STORAGE_USE_SSL"},
		},
	}
}

func newStore(c *cli.Context) (storage.ObjectStorage, error) {
	return storage.NewMinioClient(storage.BucketConfig{
		Endpoint:  c.String("endpoint"),
		AccessKey: c.String("access-key"),
		SecretKey: c.String("secret-key"),
		Bucket:    c.String("bucket"),
		Region:    c.String("region"),
		UseSSL:    c.Bool("use-ssl"),
	})
}

func listObjects(c *cli.Context) error {
	store, err := newStore(c)
	if err != nil {
		return err
	}

	objects, err := store.ListObjects(c.Context, c.String("prefix"))
	if err != nil {
		return fmt.Errorf("failed to list bucket: %w", err)
	}

	for _, object := range objects {
		contentType := object.ContentType
		if contentType == "" {
			contentType = "-"
		}
		fmt.Printf("%-50s %10d  %s\n", object.Key, object.Size, contentType)
	}
	fmt.Printf("%d objects\n", len(objects))
	return nil
}

func backfillMetadata(c *cli.Context) error {
	store, err := newStore(c)
	if err != nil {
		return err
	}

	apiKey := c.String("api-key")
	var captioner vision.Captioner
	if apiKey != "" {
		captioner, err = vision.NewGeminiCaptioner(c.Context, apiKey, c.String("model"))
		if err != nil {
			return fmt.Errorf("failed to initialize inference client: %w", err)
		}
	}

	service := gallery.NewService(store, captioner)

	objects, err := store.ListObjects(c.Context, "")
	if err != nil {
		return fmt.Errorf("failed to list bucket: %w", err)
	}

	processed := 0
	for _, object := range objects {
		if !gallery.IsImageKey(object.Key) {
			continue
		}
		if !c.Bool("force") && service.HasMetadata(c.Context, object.Key) {
			continue
		}
		fmt.Printf("generating metadata for %s\n", object.Key)
		service.SaveMetadata(c.Context, object.Key)
		processed++
	}

	fmt.Printf("backfilled metadata for %d images\n", processed)
	return nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "galleryctl",
		Usage: "Administer the gallery bucket",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List objects stored in the gallery bucket",
				Flags: append(storageFlags(),
					&cli.StringFlag{
						Name:  "prefix",
						Usage: "Only list objects with this key prefix",
					},
				),
				Action: listObjects,
			},
			{
				Name:  "backfill",
				Usage: "Generate metadata records for images that lack one",
				Flags: append(storageFlags(),
					&cli.StringFlag{
						Name:    "api-key",
						Usage:   "Gemini API key",
						EnvVars: []string{"GOOGLE_API_KEY"},
					},
					&cli.StringFlag{
						Name:    "model",
						Usage:   "Inference model to use",
						Value:   "gemini-2.0-flash",
						EnvVars: []string{"GENAI_MODEL"},
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Regenerate metadata even when a record already exists",
					},
				),
				Action: backfillMetadata,
			},
		},
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
