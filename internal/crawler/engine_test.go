package crawler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockFetcher is a mock implementation of the Fetcher interface.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	args := m.Called(ctx, rawURL)
	return args.String(0), args.Error(1)
}

func (m *MockFetcher) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockRobotsPolicy is a mock implementation of the RobotsPolicy interface.
type MockRobotsPolicy struct {
	mock.Mock
}

func (m *MockRobotsPolicy) Allowed(ctx context.Context, rawURL string) bool {
	args := m.Called(ctx, rawURL)
	return args.Bool(0)
}

func testEngineConfig(maxDepth int) Config {
	return Config{
		BaseURL:   "https://docs.example.com/guide/",
		UserAgent: "test-agent",
		MaxDepth:  maxDepth,
	}
}

func newTestEngine(t *testing.T, cfg Config, fetcher Fetcher, robots RobotsPolicy) *Engine {
	t.Helper()
	engine, err := NewEngine(cfg, fetcher, robots, newTestScopeFilter(), newTestClassifier(), nil)
	require.NoError(t, err)
	return engine
}

func allowAll() *MockRobotsPolicy {
	robots := new(MockRobotsPolicy)
	robots.On("Allowed", mock.Anything, mock.Anything).Return(true)
	return robots
}

func pageWith(title string, hrefs ...string) string {
	markup := "<html><head><title>" + title + "</title></head><body>"
	for _, href := range hrefs {
		markup += `<a href="` + href + `">link</a>`
	}
	return markup + "</body></html>"
}

func TestEngineRunBreadthFirstWithDepthBound(t *testing.T) {
	const (
		root  = "https://docs.example.com/guide/"
		page1 = "https://docs.example.com/guide/page1"
		page2 = "https://docs.example.com/guide/page2"
	)

	fetcher := new(MockFetcher)
	// Root links to page1 twice and page2 once; page1 links one level deeper,
	// which exceeds the depth bound and must never be fetched.
	fetcher.On("Fetch", mock.Anything, root).
		Return(pageWith("Root", "/guide/page1", "/guide/page1", "/guide/page2"), nil).Once()
	fetcher.On("Fetch", mock.Anything, page1).
		Return(pageWith("Page One", "/guide/too-deep"), nil).Once()
	fetcher.On("Fetch", mock.Anything, page2).
		Return(pageWith("Page Two"), nil).Once()

	engine := newTestEngine(t, testEngineConfig(1), fetcher, allowAll())
	res, err := engine.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Pages, 3)
	require.Equal(t, root, res.Pages[0].URL)
	require.Equal(t, page1, res.Pages[1].URL)
	require.Equal(t, page2, res.Pages[2].URL)
	require.Equal(t, "Root", res.Pages[0].Title)
	require.Equal(t, 0, res.Pages[0].Depth)
	require.Equal(t, 1, res.Pages[1].Depth)

	// Beyond-depth discards are silent.
	require.Empty(t, res.FailedURLs)
	require.Empty(t, res.SkippedURLs)
	fetcher.AssertExpectations(t)
}

func TestEngineRunSkipsOutOfPathLinks(t *testing.T) {
	const root = "https://docs.example.com/guide/"

	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, root).
		Return(pageWith("Root", "/changelog"), nil).Once()

	engine := newTestEngine(t, testEngineConfig(3), fetcher, allowAll())
	res, err := engine.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Pages, 1)
	require.Equal(t, []string{"https://docs.example.com/changelog"}, res.SkippedURLs)
	fetcher.AssertExpectations(t)
}

func TestEngineRunRecordsFetchFailures(t *testing.T) {
	const (
		root = "https://docs.example.com/guide/"
		bad  = "https://docs.example.com/guide/broken"
		good = "https://docs.example.com/guide/fine"
	)

	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, root).
		Return(pageWith("Root", "/guide/broken", "/guide/fine"), nil).Once()
	fetcher.On("Fetch", mock.Anything, bad).
		Return("", errors.New("connection reset")).Once()
	fetcher.On("Fetch", mock.Anything, good).
		Return(pageWith("Fine"), nil).Once()

	engine := newTestEngine(t, testEngineConfig(2), fetcher, allowAll())
	res, err := engine.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, []string{bad}, res.FailedURLs)
	require.Len(t, res.Pages, 2, "a failed URL must not abort the crawl")
	fetcher.AssertExpectations(t)
}

func TestEngineRunTreatsSoftNotFoundAsFailure(t *testing.T) {
	const root = "https://docs.example.com/guide/"

	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, root).
		Return(pageWith("Oops")+"<p>the content you're looking for is not here</p>", nil).Once()

	engine := newTestEngine(t, testEngineConfig(1), fetcher, allowAll())
	res, err := engine.Run(context.Background())
	require.NoError(t, err)

	require.Empty(t, res.Pages)
	require.Equal(t, []string{root}, res.FailedURLs)
	fetcher.AssertExpectations(t)
}

func TestEngineRunRetriesBotChallengeOnce(t *testing.T) {
	const root = "https://docs.example.com/guide/"
	challenge := pageWith("Checking") + "<p>verify that you're not a robot</p>"

	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, root).Return(challenge, nil).Once()
	fetcher.On("Fetch", mock.Anything, root).Return(pageWith("Real Content"), nil).Once()

	engine := newTestEngine(t, testEngineConfig(0), fetcher, allowAll())
	res, err := engine.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Pages, 1)
	require.Equal(t, "Real Content", res.Pages[0].Title)
	fetcher.AssertExpectations(t)
}

func TestEngineRunFailsOnPersistentBotChallenge(t *testing.T) {
	const root = "https://docs.example.com/guide/"
	challenge := pageWith("Checking") + "<p>verify that you're not a robot</p>"

	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, root).Return(challenge, nil).Twice()

	engine := newTestEngine(t, testEngineConfig(0), fetcher, allowAll())
	res, err := engine.Run(context.Background())
	require.NoError(t, err)

	require.Empty(t, res.Pages)
	require.Equal(t, []string{root}, res.FailedURLs)
	fetcher.AssertExpectations(t)
}

func TestEngineRunHonorsRobotsPolicy(t *testing.T) {
	const root = "https://docs.example.com/guide/"

	fetcher := new(MockFetcher)
	robots := new(MockRobotsPolicy)
	robots.On("Allowed", mock.Anything, root).Return(false).Once()

	engine := newTestEngine(t, testEngineConfig(1), fetcher, robots)
	res, err := engine.Run(context.Background())
	require.NoError(t, err)

	require.Empty(t, res.Pages)
	require.Equal(t, []string{root}, res.SkippedURLs)
	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	robots.AssertExpectations(t)
}

func TestEngineRunStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := newTestEngine(t, testEngineConfig(1), new(MockFetcher), allowAll())
	_, err := engine.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
