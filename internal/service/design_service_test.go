package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arsitekta/arsitekta-api/internal/dto"
	"github.com/arsitekta/arsitekta-api/internal/models"
	appErrors "github.com/arsitekta/arsitekta-api/pkg/errors"
)

type designStoreStub struct {
	designs      map[string]models.Design
	listResult   []models.DesignWithArchitect
	listCalls    int
	updateCalled bool
	deleteCalled bool
	total        int
	breakdown    []models.KategoriCount
	createErr    error
	listErr      error
}

func (s *designStoreStub) Create(ctx context.Context, design *models.Design) error {
	if s.createErr != nil {
		return s.createErr
	}
	if s.designs == nil {
		s.designs = make(map[string]models.Design)
	}
	if design.ID == "" {
		design.ID = "d-new"
	}
	s.designs[design.ID] = *design
	return nil
}

func (s *designStoreStub) GetByID(ctx context.Context, id string) (*models.Design, error) {
	if design, ok := s.designs[id]; ok {
		return &design, nil
	}
	return nil, sql.ErrNoRows
}

func (s *designStoreStub) GetByIDWithArchitect(ctx context.Context, id string) (*models.DesignWithArchitect, error) {
	design, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	name := "Andi"
	city := "Bandung"
	return &models.DesignWithArchitect{Design: *design, ArchitectName: &name, ArchitectCity: &city}, nil
}

func (s *designStoreStub) List(ctx context.Context, filter models.DesignFilter) ([]models.DesignWithArchitect, int, error) {
	s.listCalls++
	if s.listErr != nil {
		return nil, 0, s.listErr
	}
	return s.listResult, len(s.listResult), nil
}

func (s *designStoreStub) Update(ctx context.Context, design *models.Design) error {
	s.updateCalled = true
	if _, ok := s.designs[design.ID]; !ok {
		return sql.ErrNoRows
	}
	s.designs[design.ID] = *design
	return nil
}

func (s *designStoreStub) Delete(ctx context.Context, id string) error {
	s.deleteCalled = true
	if _, ok := s.designs[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.designs, id)
	return nil
}

func (s *designStoreStub) CountByArchitect(ctx context.Context, architectID string) (int, []models.KategoriCount, error) {
	return s.total, s.breakdown, nil
}

type architectResolverStub struct {
	architects map[string]models.Architect
}

func (s *architectResolverStub) FindByID(ctx context.Context, id string) (*models.Architect, error) {
	if architect, ok := s.architects[id]; ok {
		return &architect, nil
	}
	return nil, sql.ErrNoRows
}

type fileStorageStub struct {
	saved   []string
	deleted []string
	saveErr error
}

func (s *fileStorageStub) SaveStream(filename string, r io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	_, _ = io.Copy(io.Discard, r)
	s.saved = append(s.saved, filename)
	return filename, nil
}

func (s *fileStorageStub) Delete(filename string) error {
	s.deleted = append(s.deleted, filename)
	return nil
}

func (s *fileStorageStub) PublicURL(filename string) string {
	return "/uploads/" + filename
}

type cacheStub struct {
	entries  map[string][]byte
	sets     int
	patterns []string
}

func (s *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	encoded, ok := s.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(encoded, dest)
}

func (s *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if s.entries == nil {
		s.entries = make(map[string][]byte)
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.entries[key] = encoded
	s.sets++
	return nil
}

func (s *cacheStub) DeleteByPattern(ctx context.Context, pattern string) error {
	s.patterns = append(s.patterns, pattern)
	s.entries = nil
	return nil
}

func newDesignServiceForTest(repo *designStoreStub, storage *fileStorageStub, cache *cacheStub) *DesignService {
	architects := &architectResolverStub{architects: map[string]models.Architect{
		"arch-1": {ID: "arch-1", FullName: "Andi", City: "Bandung"},
	}}
	return NewDesignService(repo, architects, storage, cache, nil, nil, DesignServiceConfig{})
}

func TestDesignServiceCreateTitleBounds(t *testing.T) {
	repo := &designStoreStub{}
	svc := newDesignServiceForTest(repo, &fileStorageStub{}, &cacheStub{})

	_, err := svc.Create(context.Background(), "arch-1", dto.CreateDesignRequest{Title: "   "}, nil, nil)
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 400, appErr.Status)
	assert.Contains(t, appErr.Fields, "title")
	assert.Empty(t, repo.designs)

	_, err = svc.Create(context.Background(), "arch-1", dto.CreateDesignRequest{Title: strings.Repeat("x", 201)}, nil, nil)
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)

	design, err := svc.Create(context.Background(), "arch-1", dto.CreateDesignRequest{Title: strings.Repeat("x", 200)}, nil, nil)
	require.NoError(t, err)
	assert.Len(t, design.Title, 200)
}

func TestDesignServiceCreateUnknownArchitect(t *testing.T) {
	svc := newDesignServiceForTest(&designStoreStub{}, &fileStorageStub{}, &cacheStub{})

	_, err := svc.Create(context.Background(), "ghost", dto.CreateDesignRequest{Title: "Rumah"}, nil, nil)
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestDesignServiceCreateRollsBackFilesOnStoreFailure(t *testing.T) {
	repo := &designStoreStub{createErr: errors.New("db down")}
	storage := &fileStorageStub{}
	svc := newDesignServiceForTest(repo, storage, &cacheStub{})

	uploads := []DesignUpload{{Filename: "a.jpg", Content: strings.NewReader("img")}}
	_, err := svc.Create(context.Background(), "arch-1", dto.CreateDesignRequest{Title: "Rumah"}, uploads, nil)
	require.Error(t, err)
	require.Len(t, storage.saved, 1)
	assert.Equal(t, storage.saved, storage.deleted)
}

func TestDesignServiceCreateInvalidatesCatalogCache(t *testing.T) {
	cache := &cacheStub{}
	svc := newDesignServiceForTest(&designStoreStub{}, &fileStorageStub{}, cache)

	design, err := svc.Create(context.Background(), "arch-1", dto.CreateDesignRequest{Title: "Rumah"}, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, cache.patterns, "designs:*")

	// Responses always carry real arrays, never null.
	assert.NotNil(t, design.FotoBangunan)
	assert.NotNil(t, design.FotoDenah)
	assert.Empty(t, design.FotoBangunan)
}

func TestDesignServiceGetByIDMalformedPhotoColumns(t *testing.T) {
	repo := &designStoreStub{designs: map[string]models.Design{
		"d1": {ID: "d1", Title: "Rumah", ArchitectID: "arch-1", FotoBangunan: "{not json", FotoDenah: "null"},
	}}
	svc := newDesignServiceForTest(repo, &fileStorageStub{}, &cacheStub{})

	design, err := svc.GetByID(context.Background(), "d1", false)
	require.NoError(t, err)
	assert.Equal(t, []string{}, design.FotoBangunan)
	assert.Equal(t, []string{}, design.FotoDenah)
	assert.Nil(t, design.Architect)
}

func TestDesignServiceGetByIDResolvesPhotoURLs(t *testing.T) {
	repo := &designStoreStub{designs: map[string]models.Design{
		"d1": {ID: "d1", Title: "Rumah", ArchitectID: "arch-1", FotoBangunan: `["designs/a.jpg"]`, FotoDenah: "[]"},
	}}
	svc := newDesignServiceForTest(repo, &fileStorageStub{}, &cacheStub{})

	design, err := svc.GetByID(context.Background(), "d1", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/designs/a.jpg"}, design.FotoBangunan)
	require.NotNil(t, design.Architect)
	assert.Equal(t, "Andi", design.Architect.FullName)
}

func TestDesignServiceUpdateOwnershipEnforced(t *testing.T) {
	repo := &designStoreStub{designs: map[string]models.Design{
		"d1": {ID: "d1", Title: "Rumah", ArchitectID: "arch-1", FotoBangunan: "[]", FotoDenah: "[]"},
	}}
	svc := newDesignServiceForTest(repo, &fileStorageStub{}, &cacheStub{})

	title := "Direbut"
	_, err := svc.Update(context.Background(), "d1", "arch-2", AuthzOwnerOnly, dto.UpdateDesignRequest{Title: &title}, nil, nil)
	require.Error(t, err)
	assert.Equal(t, 403, appErrors.FromError(err).Status)
	assert.False(t, repo.updateCalled)

	// Admin override skips the ownership check.
	updated, err := svc.Update(context.Background(), "d1", "admin-1", AuthzAdminOverride, dto.UpdateDesignRequest{Title: &title}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Direbut", updated.Title)
}

func TestDesignServiceUpdateReplacesPhotoBatch(t *testing.T) {
	repo := &designStoreStub{designs: map[string]models.Design{
		"d1": {ID: "d1", Title: "Rumah", ArchitectID: "arch-1", FotoBangunan: `["designs/old1.jpg","designs/old2.jpg"]`, FotoDenah: `["designs/denah.jpg"]`},
	}}
	storage := &fileStorageStub{}
	svc := newDesignServiceForTest(repo, storage, &cacheStub{})

	uploads := []DesignUpload{{Filename: "new.jpg", Content: strings.NewReader("img")}}
	updated, err := svc.Update(context.Background(), "d1", "arch-1", AuthzOwnerOnly, dto.UpdateDesignRequest{}, uploads, nil)
	require.NoError(t, err)

	// The whole old batch of that field goes away; the other field is untouched.
	assert.ElementsMatch(t, []string{"designs/old1.jpg", "designs/old2.jpg"}, storage.deleted)
	assert.Len(t, updated.FotoBangunan, 1)
	assert.Equal(t, []string{"/uploads/designs/denah.jpg"}, updated.FotoDenah)
}

func TestDesignServiceDeleteReleasesAllPhotos(t *testing.T) {
	repo := &designStoreStub{designs: map[string]models.Design{
		"d1": {ID: "d1", Title: "Rumah", ArchitectID: "arch-1", FotoBangunan: `["designs/a.jpg"]`, FotoDenah: `["designs/b.jpg"]`},
	}}
	storage := &fileStorageStub{}
	cache := &cacheStub{}
	svc := newDesignServiceForTest(repo, storage, cache)

	require.NoError(t, svc.Delete(context.Background(), "d1", "arch-1", AuthzOwnerOnly))
	assert.True(t, repo.deleteCalled)
	assert.ElementsMatch(t, []string{"designs/a.jpg", "designs/b.jpg"}, storage.deleted)
	assert.Contains(t, cache.patterns, "designs:*")
}

func TestDesignServiceDeleteForeignDesign(t *testing.T) {
	repo := &designStoreStub{designs: map[string]models.Design{
		"d1": {ID: "d1", Title: "Rumah", ArchitectID: "arch-1", FotoBangunan: "[]", FotoDenah: "[]"},
	}}
	svc := newDesignServiceForTest(repo, &fileStorageStub{}, &cacheStub{})

	err := svc.Delete(context.Background(), "d1", "arch-2", AuthzOwnerOnly)
	require.Error(t, err)
	assert.Equal(t, 403, appErrors.FromError(err).Status)
	assert.False(t, repo.deleteCalled)
}

func TestDesignServiceListLatestUsesCache(t *testing.T) {
	repo := &designStoreStub{listResult: []models.DesignWithArchitect{
		{Design: models.Design{ID: "d1", Title: "Rumah", ArchitectID: "arch-1", FotoBangunan: "[]", FotoDenah: "[]"}},
	}}
	cache := &cacheStub{}
	svc := newDesignServiceForTest(repo, &fileStorageStub{}, cache)

	first, err := svc.ListLatest(context.Background(), 6)
	require.NoError(t, err)
	assert.Len(t, first, 1)
	assert.Equal(t, 1, repo.listCalls)
	assert.Equal(t, 1, cache.sets)

	second, err := svc.ListLatest(context.Background(), 6)
	require.NoError(t, err)
	assert.Len(t, second, 1)
	assert.Equal(t, 1, repo.listCalls, "cache hit must not reach the repository")
}

func TestDesignServiceSearchTrimsTerms(t *testing.T) {
	repo := &designStoreStub{}
	svc := newDesignServiceForTest(repo, &fileStorageStub{}, &cacheStub{})

	_, pagination, err := svc.Search(context.Background(), dto.SearchDesignsQuery{Q: "  tropis  ", City: " Bandung "})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)
	assert.Equal(t, 1, pagination.Page)
}

func TestDesignServiceStatistics(t *testing.T) {
	repo := &designStoreStub{total: 7, breakdown: []models.KategoriCount{{Kategori: "rumah", Count: 4}, {Kategori: "", Count: 3}}}
	svc := newDesignServiceForTest(repo, &fileStorageStub{}, &cacheStub{})

	stats, err := svc.Statistics(context.Background(), "arch-1")
	require.NoError(t, err)
	assert.Equal(t, 7, stats.Total)
	require.Len(t, stats.PerKategori, 2)
}

func TestDesignServiceExport(t *testing.T) {
	repo := &designStoreStub{listResult: []models.DesignWithArchitect{
		{Design: models.Design{ID: "d1", Title: "Rumah Tropis", ArchitectID: "arch-1", FotoBangunan: "[]", FotoDenah: "[]", CreatedAt: time.Now()}},
	}}
	svc := newDesignServiceForTest(repo, &fileStorageStub{}, &cacheStub{})

	csvExport, err := svc.Export(context.Background(), "arch-1", "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", csvExport.MimeType)
	assert.Contains(t, string(csvExport.Content), "Rumah Tropis")

	pdfExport, err := svc.Export(context.Background(), "arch-1", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdfExport.MimeType)
	assert.NotEmpty(t, pdfExport.Content)

	_, err = svc.Export(context.Background(), "arch-1", "xlsx")
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}
