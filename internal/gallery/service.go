package gallery

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/lumapix/gallery/internal/storage"
	"github.com/lumapix/gallery/internal/vision"
)

const (
	// Payloads smaller than this are rejected before inference as a cheap
	// "is this really image data" sanity check.
	minImageBytes = 500

	titleInstruction       = "Generate a single, short title for this image."
	descriptionInstruction = "Generate a short, one-sentence description of this image."

	errTitle            = "Error"
	errDescription      = "Error"
	errFetchTitle       = "Error fetching title"
	errFetchDescription = "Error fetching description"
)

// Entry pairs a stored image with its metadata record for gallery rendering.
type Entry struct {
	Name   string
	Record Record
}

// Service sequences the object store and the inference client.
type Service struct {
	store     storage.ObjectStorage
	captioner vision.Captioner
}

// NewService builds a gallery service. A nil captioner means no inference
// credential is configured; metadata generation then degrades to the fixed
// error pair instead of calling out.
func NewService(store storage.ObjectStorage, captioner vision.Captioner) *Service {
	return &Service{store: store, captioner: captioner}
}

// Entries lists every stored image with its metadata record. Objects without
// a recognized image suffix (including the metadata objects themselves) are
// skipped. Per-entry metadata failures degrade to the placeholder record, so
// the listing never fails on them.
func (s *Service) Entries(ctx context.Context) ([]Entry, error) {
	objects, err := s.store.ListObjects(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list bucket: %w", err)
	}

	entries := make([]Entry, 0, len(objects))
	for _, object := range objects {
		if !IsImageKey(object.Key) {
			continue
		}
		entries = append(entries, Entry{
			Name:   object.Key,
			Record: s.lookupRecord(ctx, object.Key),
		})
	}
	return entries, nil
}

func (s *Service) lookupRecord(ctx context.Context, imageKey string) Record {
	data, _, err := s.store.GetObject(ctx, MetadataKey(imageKey))
	if err != nil {
		log.Warn().Err(err).Str("image", imageKey).Msg("metadata object unavailable, using placeholder")
		return Placeholder
	}

	record, err := DecodeRecord(data)
	if err != nil {
		log.Warn().Err(err).Str("image", imageKey).Msg("metadata object unreadable, using placeholder")
		return Placeholder
	}
	return record
}

// Fetch returns a stored object's bytes and recorded info.
func (s *Service) Fetch(ctx context.Context, key string) ([]byte, storage.ObjectInfo, error) {
	return s.store.GetObject(ctx, key)
}

// HasMetadata reports whether an image has a readable metadata record.
func (s *Service) HasMetadata(ctx context.Context, imageKey string) bool {
	data, _, err := s.store.GetObject(ctx, MetadataKey(imageKey))
	if err != nil {
		return false
	}
	_, err = DecodeRecord(data)
	return err == nil
}

// Upload stores the image under its original filename (last writer wins),
// then synchronously generates and persists its metadata record. Metadata
// failures never fail the upload.
func (s *Service) Upload(ctx context.Context, name string, data []byte, contentType string) error {
	if err := s.store.PutObject(ctx, name, data, contentType); err != nil {
		return fmt.Errorf("failed to store %s: %w", name, err)
	}
	log.Info().Str("name", name).Int("size", len(data)).Msg("image uploaded")

	s.SaveMetadata(ctx, name)
	return nil
}

// SaveMetadata runs the generation pipeline for a stored image and persists
// the resulting record under the derived name, overwriting any prior one.
// Write failures are logged and swallowed.
func (s *Service) SaveMetadata(ctx context.Context, imageKey string) {
	title, description := s.GenerateMetadata(ctx, imageKey)

	record := Record{Title: title, Description: description}
	data, err := EncodeRecord(record)
	if err != nil {
		log.Error().Err(err).Str("image", imageKey).Msg("failed to encode metadata")
		return
	}

	metadataKey := MetadataKey(imageKey)
	if err := s.store.PutObject(ctx, metadataKey, data, "application/json"); err != nil {
		log.Error().Err(err).Str("key", metadataKey).Msg("failed to save metadata")
		return
	}
	log.Info().Str("key", metadataKey).Msg("metadata saved")
}

// GenerateMetadata produces (title, description) for a stored image. Guard
// failures return fixed error pairs instead of propagating: no configured
// credential yields ("Error", "Error"); a failed re-download, an undersized
// payload, a decode failure, or a failed inference call yields the
// fetch-error pair. Successful outputs are returned verbatim.
func (s *Service) GenerateMetadata(ctx context.Context, imageKey string) (string, string) {
	if s.captioner == nil {
		log.Error().Msg("inference credential is missing")
		return errTitle, errDescription
	}

	data, _, err := s.store.GetObject(ctx, imageKey)
	if err != nil {
		log.Error().Err(err).Str("image", imageKey).Msg("image retrieval failed")
		return errFetchTitle, errFetchDescription
	}
	if len(data) < minImageBytes {
		log.Error().Int("size", len(data)).Str("image", imageKey).Msg("image content is empty or too small")
		return errFetchTitle, errFetchDescription
	}

	normalized, err := vision.Normalize(data)
	if err != nil {
		log.Error().Err(err).Str("image", imageKey).Msg("image processing failed")
		return errFetchTitle, errFetchDescription
	}

	// The two calls are independent; issue them concurrently and join.
	var title, description string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		title, err = s.captioner.Caption(gctx, normalized, titleInstruction)
		return err
	})
	g.Go(func() error {
		var err error
		description, err = s.captioner.Caption(gctx, normalized, descriptionInstruction)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Str("image", imageKey).Msg("inference failed")
		return errFetchTitle, errFetchDescription
	}

	return title, description
}
