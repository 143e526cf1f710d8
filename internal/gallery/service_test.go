package gallery

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumapix/gallery/internal/storage"
)

type memObject struct {
	data        []byte
	contentType string
}

type memStore struct {
	objects map[string]memObject
	putErr  error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string]memObject{}}
}

func (s *memStore) ListObjects(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	infos := make([]storage.ObjectInfo, 0, len(s.objects))
	for key, object := range s.objects {
		if prefix != "" && !strings.HasPrefix(key, prefix) {
			continue
		}
		infos = append(infos, storage.ObjectInfo{
			Key:         key,
			Size:        int64(len(object.data)),
			ContentType: object.contentType,
		})
	}
	return infos, nil
}

func (s *memStore) GetObject(_ context.Context, key string) ([]byte, storage.ObjectInfo, error) {
	object, ok := s.objects[key]
	if !ok {
		return nil, storage.ObjectInfo{}, fmt.Errorf("object %s not found", key)
	}
	return object.data, storage.ObjectInfo{
		Key:         key,
		Size:        int64(len(object.data)),
		ContentType: object.contentType,
	}, nil
}

func (s *memStore) PutObject(_ context.Context, key string, data []byte, contentType string) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.objects[key] = memObject{data: data, contentType: contentType}
	return nil
}

type stubCaptioner struct {
	title       string
	description string
	err         error
}

func (c *stubCaptioner) Caption(_ context.Context, _ []byte, instruction string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	if instruction == titleInstruction {
		return c.title, nil
	}
	return c.description, nil
}

// testImagePNG returns a decodable noise PNG comfortably above the minimum
// payload size.
func testImagePNG(t *testing.T) []byte {
	t.Helper()

	rng := rand.New(rand.NewSource(42))
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.Greater(t, buf.Len(), 500)
	return buf.Bytes()
}

func TestGenerateMetadataWithoutCredential(t *testing.T) {
	service := NewService(newMemStore(), nil)

	title, description := service.GenerateMetadata(context.Background(), "cat.jpg")
	assert.Equal(t, "Error", title)
	assert.Equal(t, "Error", description)
}

func TestGenerateMetadataMissingImage(t *testing.T) {
	service := NewService(newMemStore(), &stubCaptioner{})

	title, description := service.GenerateMetadata(context.Background(), "missing.jpg")
	assert.Equal(t, "Error fetching title", title)
	assert.Equal(t, "Error fetching description", description)
}

func TestGenerateMetadataRejectsSmallPayload(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.PutObject(context.Background(), "tiny.jpg", make([]byte, 100), "image/jpeg"))
	service := NewService(store, &stubCaptioner{})

	title, description := service.GenerateMetadata(context.Background(), "tiny.jpg")
	assert.Equal(t, "Error fetching title", title)
	assert.Equal(t, "Error fetching description", description)
}

func TestGenerateMetadataRejectsUndecodablePayload(t *testing.T) {
	store := newMemStore()
	junk := bytes.Repeat([]byte("x"), 600)
	require.NoError(t, store.PutObject(context.Background(), "junk.jpg", junk, "image/jpeg"))
	service := NewService(store, &stubCaptioner{})

	title, description := service.GenerateMetadata(context.Background(), "junk.jpg")
	assert.Equal(t, "Error fetching title", title)
	assert.Equal(t, "Error fetching description", description)
}

func TestGenerateMetadataInferenceFailure(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.PutObject(context.Background(), "cat.png", testImagePNG(t), "image/png"))
	service := NewService(store, &stubCaptioner{err: fmt.Errorf("model unavailable")})

	title, description := service.GenerateMetadata(context.Background(), "cat.png")
	assert.Equal(t, "Error fetching title", title)
	assert.Equal(t, "Error fetching description", description)
}

func TestGenerateMetadataSuccess(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.PutObject(context.Background(), "cat.png", testImagePNG(t), "image/png"))
	service := NewService(store, &stubCaptioner{title: "A cat", description: "A cat sitting on a mat."})

	title, description := service.GenerateMetadata(context.Background(), "cat.png")
	assert.Equal(t, "A cat", title)
	assert.Equal(t, "A cat sitting on a mat.", description)
}

func TestUploadPersistsImageAndMetadata(t *testing.T) {
	store := newMemStore()
	service := NewService(store, &stubCaptioner{title: "A cat", description: "A cat sitting on a mat."})

	err := service.Upload(context.Background(), "cat.png", testImagePNG(t), "image/png")
	require.NoError(t, err)

	_, info, err := store.GetObject(context.Background(), "cat.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", info.ContentType)

	data, info, err := store.GetObject(context.Background(), "cat-json.json")
	require.NoError(t, err)
	assert.Equal(t, "application/json", info.ContentType)

	record, err := DecodeRecord(data)
	require.NoError(t, err)
	assert.Equal(t, "A cat", record.Title)
	assert.Equal(t, "A cat sitting on a mat.", record.Description)
}

func TestUploadWithoutCredentialStillSucceeds(t *testing.T) {
	store := newMemStore()
	service := NewService(store, nil)

	err := service.Upload(context.Background(), "cat.png", testImagePNG(t), "image/png")
	require.NoError(t, err)

	data, _, err := store.GetObject(context.Background(), "cat-json.json")
	require.NoError(t, err)

	record, err := DecodeRecord(data)
	require.NoError(t, err)
	assert.Equal(t, Record{Title: "Error", Description: "Error"}, record)
}

func TestEntriesSkipsNonImagesAndUsesPlaceholder(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	require.NoError(t, store.PutObject(ctx, "cat.jpg", testImagePNG(t), "image/jpeg"))
	require.NoError(t, store.PutObject(ctx, "cat-json.json", []byte("broken {"), "application/json"))
	require.NoError(t, store.PutObject(ctx, "dog.png", testImagePNG(t), "image/png"))
	require.NoError(t, store.PutObject(ctx, "notes.txt", []byte("hello"), "text/plain"))

	service := NewService(store, nil)
	entries, err := service.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byName := map[string]Record{}
	for _, entry := range entries {
		byName[entry.Name] = entry.Record
	}

	// cat.jpg has an unreadable record, dog.png has none; both degrade.
	assert.Equal(t, Placeholder, byName["cat.jpg"])
	assert.Equal(t, Placeholder, byName["dog.png"])
}

func TestReuploadOverwritesMetadata(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	captioner := &stubCaptioner{title: "First", description: "First pass."}
	service := NewService(store, captioner)

	require.NoError(t, service.Upload(ctx, "cat.png", testImagePNG(t), "image/png"))

	captioner.title = "Second"
	captioner.description = "Second pass."
	require.NoError(t, service.Upload(ctx, "cat.png", testImagePNG(t), "image/png"))

	entries, err := service.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "cat.png", entries[0].Name)
	assert.Equal(t, "Second", entries[0].Record.Title)
	assert.Equal(t, "Second pass.", entries[0].Record.Description)
}

func TestHasMetadata(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	service := NewService(store, nil)

	assert.False(t, service.HasMetadata(ctx, "cat.jpg"))

	require.NoError(t, store.PutObject(ctx, "cat-json.json", []byte("broken {"), "application/json"))
	assert.False(t, service.HasMetadata(ctx, "cat.jpg"))

	data, err := EncodeRecord(Record{Title: "A cat", Description: "A cat."})
	require.NoError(t, err)
	require.NoError(t, store.PutObject(ctx, "cat-json.json", data, "application/json"))
	assert.True(t, service.HasMetadata(ctx, "cat.jpg"))
}

func TestUploadFailurePropagates(t *testing.T) {
	store := newMemStore()
	store.putErr = fmt.Errorf("bucket unavailable")
	service := NewService(store, nil)

	err := service.Upload(context.Background(), "cat.png", testImagePNG(t), "image/png")
	assert.Error(t, err)
}
