package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	activitydomain "github.com/loopwire/partnerly/internal/activity/domain"
	discoverydomain "github.com/loopwire/partnerly/internal/discovery/domain"
	rankingdomain "github.com/loopwire/partnerly/internal/ranking/domain"
	similaritydomain "github.com/loopwire/partnerly/internal/similarity/domain"
)

type fakeRankingService struct {
	lastReq rankingdomain.Request
	rows    []rankingdomain.RankedPartner
	err     error
}

func (f *fakeRankingService) CalculatePartnerRanking(ctx context.Context, req rankingdomain.Request) ([]rankingdomain.RankedPartner, error) {
	f.lastReq = req
	_ = ctx
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

type fakeSimilarityService struct {
	similar []similaritydomain.SimilarProgram
	err     error
}

func (f *fakeSimilarityService) CalculateProgramSimilarities(ctx context.Context) error {
	_ = ctx
	return nil
}

func (f *fakeSimilarityService) SimilarPrograms(ctx context.Context, programID string) ([]similaritydomain.SimilarProgram, error) {
	_ = ctx
	_ = programID
	if f.err != nil {
		return nil, f.err
	}
	return f.similar, nil
}

type fakeDiscoveryService struct {
	lastStarred *bool
	lastIgnored *bool
	invites     int
	err         error
}

func (f *fakeDiscoveryService) Star(ctx context.Context, programID, partnerID string, starred bool) (*discoverydomain.DiscoveredPartner, error) {
	_ = ctx
	_ = programID
	_ = partnerID
	f.lastStarred = &starred
	if f.err != nil {
		return nil, f.err
	}
	return &discoverydomain.DiscoveredPartner{ProgramID: programID, PartnerID: partnerID}, nil
}

func (f *fakeDiscoveryService) Ignore(ctx context.Context, programID, partnerID string, ignored bool) (*discoverydomain.DiscoveredPartner, error) {
	_ = ctx
	f.lastIgnored = &ignored
	if f.err != nil {
		return nil, f.err
	}
	return &discoverydomain.DiscoveredPartner{ProgramID: programID, PartnerID: partnerID}, nil
}

func (f *fakeDiscoveryService) MarkInvited(ctx context.Context, programID, partnerID string) (*discoverydomain.DiscoveredPartner, error) {
	_ = ctx
	f.invites++
	if f.err != nil {
		return nil, f.err
	}
	return &discoverydomain.DiscoveredPartner{ProgramID: programID, PartnerID: partnerID}, nil
}

type fakeActivityStream struct {
	published []activitydomain.Event
	err       error
}

func (f *fakeActivityStream) ReadBatch(ctx context.Context, count int64) ([]activitydomain.Event, error) {
	_ = ctx
	_ = count
	return nil, nil
}

func (f *fakeActivityStream) Ack(ctx context.Context, entryIDs []string) error {
	_ = ctx
	_ = entryIDs
	return nil
}

func (f *fakeActivityStream) Publish(ctx context.Context, event activitydomain.Event) (string, error) {
	_ = ctx
	if f.err != nil {
		return "", f.err
	}
	f.published = append(f.published, event)
	return "1-0", nil
}

func newTestServer(ranking *fakeRankingService, similarity *fakeSimilarityService, discovery *fakeDiscoveryService, stream *fakeActivityStream) *Server {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	srv := &Server{
		engine:        engine,
		rankingSvc:    ranking,
		similaritySvc: similarity,
		discoverySvc:  discovery,
		stream:        stream,
	}
	srv.registerAPIRoutes()
	return srv
}

func TestPartnerRankingDefaultsAndPassesSimilarPrograms(t *testing.T) {
	rankingSvc := &fakeRankingService{rows: []rankingdomain.RankedPartner{}}
	similaritySvc := &fakeSimilarityService{
		similar: []similaritydomain.SimilarProgram{{ProgramID: "prog-b", Score: 0.8}},
	}
	srv := newTestServer(rankingSvc, similaritySvc, &fakeDiscoveryService{}, &fakeActivityStream{})

	req := httptest.NewRequest(http.MethodGet, "/v1/programs/prog-a/partner-ranking?partner_ids=p1,p2&country=US", nil)
	resp := httptest.NewRecorder()
	srv.Engine().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	got := rankingSvc.lastReq
	if got.ProgramID != "prog-a" {
		t.Fatalf("expected program_id prog-a, got %q", got.ProgramID)
	}
	if got.Status != rankingdomain.StatusDiscover {
		t.Fatalf("expected default status discover, got %q", got.Status)
	}
	if got.Page != 1 || got.PageSize != 25 {
		t.Fatalf("expected default page 1/25, got %d/%d", got.Page, got.PageSize)
	}
	if len(got.PartnerIDs) != 2 || got.PartnerIDs[0] != "p1" {
		t.Fatalf("expected parsed partner_ids, got %v", got.PartnerIDs)
	}
	if got.Country != "US" {
		t.Fatalf("expected country US, got %q", got.Country)
	}
	if len(got.SimilarPrograms) != 1 || got.SimilarPrograms[0].ProgramID != "prog-b" {
		t.Fatalf("expected similar programs forwarded, got %v", got.SimilarPrograms)
	}
}

func TestPartnerRankingInvalidStatusReturns400(t *testing.T) {
	rankingSvc := &fakeRankingService{err: rankingdomain.ErrInvalidStatus}
	srv := newTestServer(rankingSvc, &fakeSimilarityService{}, &fakeDiscoveryService{}, &fakeActivityStream{})

	req := httptest.NewRequest(http.MethodGet, "/v1/programs/prog-a/partner-ranking?status=banned", nil)
	resp := httptest.NewRecorder()
	srv.Engine().ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestPartnerRankingUnknownProgramReturns404(t *testing.T) {
	rankingSvc := &fakeRankingService{err: rankingdomain.ErrUnknownProgram}
	srv := newTestServer(rankingSvc, &fakeSimilarityService{}, &fakeDiscoveryService{}, &fakeActivityStream{})

	req := httptest.NewRequest(http.MethodGet, "/v1/programs/nope/partner-ranking", nil)
	resp := httptest.NewRecorder()
	srv.Engine().ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestStarDiscoveredPartnerDefaultsToTrue(t *testing.T) {
	discoverySvc := &fakeDiscoveryService{}
	srv := newTestServer(&fakeRankingService{}, &fakeSimilarityService{}, discoverySvc, &fakeActivityStream{})

	req := httptest.NewRequest(http.MethodPut, "/v1/programs/prog-a/discovered-partners/p1/star", nil)
	resp := httptest.NewRecorder()
	srv.Engine().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if discoverySvc.lastStarred == nil || !*discoverySvc.lastStarred {
		t.Fatal("expected star request with empty body to set starred")
	}
}

func TestStarDiscoveredPartnerHonorsExplicitFalse(t *testing.T) {
	discoverySvc := &fakeDiscoveryService{}
	srv := newTestServer(&fakeRankingService{}, &fakeSimilarityService{}, discoverySvc, &fakeActivityStream{})

	body := bytes.NewBufferString(`{"starred":false}`)
	req := httptest.NewRequest(http.MethodPut, "/v1/programs/prog-a/discovered-partners/p1/star", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	srv.Engine().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if discoverySvc.lastStarred == nil || *discoverySvc.lastStarred {
		t.Fatal("expected starred=false to be forwarded")
	}
}

func TestInviteDiscoveredPartnerUnknownPartnerReturns404(t *testing.T) {
	discoverySvc := &fakeDiscoveryService{err: discoverydomain.ErrUnknownPartner}
	srv := newTestServer(&fakeRankingService{}, &fakeSimilarityService{}, discoverySvc, &fakeActivityStream{})

	req := httptest.NewRequest(http.MethodPost, "/v1/programs/prog-a/discovered-partners/nope/invite", nil)
	resp := httptest.NewRecorder()
	srv.Engine().ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestPublishActivityEvent(t *testing.T) {
	stream := &fakeActivityStream{}
	srv := newTestServer(&fakeRankingService{}, &fakeSimilarityService{}, &fakeDiscoveryService{}, stream)

	body := strings.NewReader(`{"id":"evt-1","program_id":"prog-a","partner_id":"p1","type":"lead"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/activity/events", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	srv.Engine().ServeHTTP(resp, req)

	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d: %s", resp.Code, resp.Body.String())
	}
	if len(stream.published) != 1 || stream.published[0].Type != activitydomain.EventLead {
		t.Fatalf("expected one lead event, got %v", stream.published)
	}
}

func TestPublishActivityEventRejectsUnknownType(t *testing.T) {
	stream := &fakeActivityStream{}
	srv := newTestServer(&fakeRankingService{}, &fakeSimilarityService{}, &fakeDiscoveryService{}, stream)

	body := strings.NewReader(`{"program_id":"prog-a","partner_id":"p1","type":"click"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/activity/events", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	srv.Engine().ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if len(stream.published) != 0 {
		t.Fatal("expected no event published")
	}
}

func TestPublishActivityEventStreamDownReturns503(t *testing.T) {
	stream := &fakeActivityStream{err: activitydomain.ErrStreamUnavailable}
	srv := newTestServer(&fakeRankingService{}, &fakeSimilarityService{}, &fakeDiscoveryService{}, stream)

	body := strings.NewReader(`{"program_id":"prog-a","partner_id":"p1","type":"commission"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/activity/events", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	srv.Engine().ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", resp.Code)
	}
}
