package reports

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"caseflow/internal/infra/blob"
)

// BlobObjectStore adapts a blob.Store to the ObjectStore interface used by
// the export worker.
type BlobObjectStore struct {
	store  blob.Store
	prefix string
}

// NewBlobObjectStore wraps store, namespacing keys under prefix.
func NewBlobObjectStore(store blob.Store, prefix string) *BlobObjectStore {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &BlobObjectStore{store: store, prefix: prefix}
}

func (s *BlobObjectStore) key(id string) string { return s.prefix + id }

// Put stores a rendered payload and returns its artifact descriptor.
func (s *BlobObjectStore) Put(ctx context.Context, key string, payload []byte, contentType string, metadata map[string]string) (ExportArtifact, error) {
	info, err := s.store.Put(ctx, s.key(key), bytes.NewReader(payload), blob.PutOptions{
		ContentType: contentType,
		Metadata:    metadata,
	})
	if err != nil {
		return ExportArtifact{}, err
	}
	url := info.URL
	if url == "" {
		if signed, err := s.store.PresignURL(ctx, s.key(key), blob.SignedURLOptions{Expiry: 15 * time.Minute}); err == nil {
			url = signed
		}
	}
	return ExportArtifact{
		ID:          key,
		ContentType: info.ContentType,
		SizeBytes:   info.Size,
		URL:         url,
		Metadata:    info.Metadata,
		CreatedAt:   info.LastModified,
	}, nil
}

// Get returns the artifact descriptor and payload bytes.
func (s *BlobObjectStore) Get(ctx context.Context, key string) (ExportArtifact, []byte, error) {
	info, rc, err := s.store.Get(ctx, s.key(key))
	if err != nil {
		return ExportArtifact{}, nil, err
	}
	defer func() { _ = rc.Close() }()
	payload, err := io.ReadAll(rc)
	if err != nil {
		return ExportArtifact{}, nil, err
	}
	return ExportArtifact{
		ID:          key,
		ContentType: info.ContentType,
		SizeBytes:   info.Size,
		URL:         info.URL,
		Metadata:    info.Metadata,
		CreatedAt:   info.LastModified,
	}, payload, nil
}

// Delete removes the artifact, reporting whether it existed.
func (s *BlobObjectStore) Delete(ctx context.Context, key string) (bool, error) {
	return s.store.Delete(ctx, s.key(key))
}

// List returns artifacts whose IDs start with prefix.
func (s *BlobObjectStore) List(ctx context.Context, prefix string) ([]ExportArtifact, error) {
	infos, err := s.store.List(ctx, s.key(prefix))
	if err != nil {
		return nil, err
	}
	out := make([]ExportArtifact, 0, len(infos))
	for _, info := range infos {
		out = append(out, ExportArtifact{
			ID:          strings.TrimPrefix(info.Key, s.prefix),
			ContentType: info.ContentType,
			SizeBytes:   info.Size,
			URL:         info.URL,
			Metadata:    info.Metadata,
			CreatedAt:   info.LastModified,
		})
	}
	return out, nil
}

// MemoryObjectStore is an in-memory ObjectStore for tests.
type MemoryObjectStore struct {
	mu      sync.RWMutex
	objects map[string]storedObject
}

type storedObject struct {
	artifact ExportArtifact
	payload  []byte
}

// NewMemoryObjectStore constructs an empty in-memory object store.
func NewMemoryObjectStore() *MemoryObjectStore {
	return &MemoryObjectStore{objects: make(map[string]storedObject)}
}

// Put stores a payload copy and returns its artifact descriptor.
func (s *MemoryObjectStore) Put(_ context.Context, key string, payload []byte, contentType string, metadata map[string]string) (ExportArtifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objects[key]; exists {
		return ExportArtifact{}, fmt.Errorf("object %s already exists", key)
	}
	artifact := ExportArtifact{
		ID:          key,
		ContentType: contentType,
		SizeBytes:   int64(len(payload)),
		Metadata:    cloneStringMap(metadata),
		CreatedAt:   time.Now().UTC(),
		URL:         fmt.Sprintf("https://artifacts.local/%s", key),
	}
	cp := make([]byte, len(payload))
	copy(cp, payload)
	s.objects[key] = storedObject{artifact: artifact, payload: cp}
	return artifact, nil
}

// Get returns the artifact descriptor and payload bytes.
func (s *MemoryObjectStore) Get(_ context.Context, key string) (ExportArtifact, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return ExportArtifact{}, nil, fmt.Errorf("object %s not found", key)
	}
	payload := make([]byte, len(obj.payload))
	copy(payload, obj.payload)
	artifact := obj.artifact
	artifact.Metadata = cloneStringMap(artifact.Metadata)
	return artifact, payload, nil
}

// Delete removes the object, reporting whether it existed.
func (s *MemoryObjectStore) Delete(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, existed := s.objects[key]
	if existed {
		delete(s.objects, key)
	}
	return existed, nil
}

// List returns stored artifacts matching prefix.
func (s *MemoryObjectStore) List(_ context.Context, prefix string) ([]ExportArtifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ExportArtifact, 0, len(s.objects))
	for key, obj := range s.objects {
		if prefix == "" || strings.HasPrefix(key, prefix) {
			artifact := obj.artifact
			artifact.Metadata = cloneStringMap(artifact.Metadata)
			out = append(out, artifact)
		}
	}
	return out, nil
}

// MemoryAuditLog captures export audit entries for assertions.
type MemoryAuditLog struct {
	mu      sync.Mutex
	entries []AuditEntry
}

// Record stores an audit entry.
func (l *MemoryAuditLog) Record(_ context.Context, entry AuditEntry) {
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
}

// Entries returns a copy of recorded audit entries.
func (l *MemoryAuditLog) Entries() []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func cloneStringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
