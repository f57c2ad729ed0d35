package tasksetu_test

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"maps"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/tasksetu/pkg/tasksdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Container setup and shared helpers for the end-to-end tests. Every test
 * gets its own container and therefore its own empty sqlite database.
 */

const (
	testImageName = "tasksetu-test:latest"

	bootstrapToken = "test-bootstrap-token-12345"
	testPassword   = "Passw0rd!"
)

// TestMain builds the Docker image once before all tests and removes it
// afterwards.
func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(0)
	}

	fmt.Fprintf(os.Stdout, "Building TaskSetu Docker image...")
	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up TaskSetu Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/tasksetu/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

func cleanupDockerImage() {
	cmd := exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // image might not exist
}

type serviceContainer struct {
	testcontainers.Container
	baseURL string
	client  *tasksdk.Client
}

// relaxedLimits lifts the rate limits so tests can make many quick calls.
var relaxedLimits = map[string]string{
	"RATELIMIT_STRICT_REQUESTS":   "1000",
	"RATELIMIT_STRICT_WINDOW_SEC": "60",
	"RATELIMIT_STRICT_BURST":      "1000",
	"RATELIMIT_MODERATE_REQUESTS": "1000",
	"RATELIMIT_MODERATE_BURST":    "1000",
}

// setupContainer starts the service with relaxed rate limits.
func setupContainer(t *testing.T) *serviceContainer {
	return startContainer(t, relaxedLimits)
}

// setupContainerWithDefaultRateLimits starts the service with production
// rate limits, for the tests that check limiting itself.
func setupContainerWithDefaultRateLimits(t *testing.T) *serviceContainer {
	return startContainer(t, nil)
}

func startContainer(t *testing.T, extraEnv map[string]string) *serviceContainer {
	t.Helper()
	ctx := context.Background()

	env := map[string]string{
		"JWT_SECRET":      "e2e-signing-secret-0123456789abcdef",
		"BOOTSTRAP_TOKEN": bootstrapToken,
		"DATABASE_FILE":   "/data/tasksetu.db",
		"APP_BASE_URL":    "http://app.test",
		"MAIL_DRIVER":     "log",
		"BCRYPT_COST":     "10",
		"ENV":             "dev",
		"LOG_LEVEL":       "info",
		"LOG_FORMAT":      "json",
	}
	maps.Copy(env, extraEnv)

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        testImageName,
			ExposedPorts: []string{"8080/tcp"},
			Env:          env,
			WaitingFor: wait.ForHTTP("/livez").
				WithPort("8080/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)
	host, err := container.Host(ctx)
	require.NoError(t, err)

	baseURL := fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
	return &serviceContainer{
		Container: container,
		baseURL:   baseURL,
		client:    tasksdk.NewClient(baseURL),
	}
}

// registerOrg registers an organization and returns the admin session.
func (c *serviceContainer) registerOrg(t *testing.T, name string) (*tasksdk.Session, *tasksdk.RegisterOrganizationResponse) {
	t.Helper()
	slug := strings.ToLower(strings.ReplaceAll(name, " ", "-"))
	sess, resp, err := c.client.RegisterOrganization(t.Context(), tasksdk.RegisterOrganizationRequest{
		OrganizationName: name,
		AdminEmail:       "admin@" + slug + ".test",
		AdminPassword:    testPassword,
		AdminFirstName:   "Ada",
		AdminLastName:    "Admin",
	})
	require.NoError(t, err, "organization registration should succeed")
	return sess, resp
}

// linkToken scans the container log for the latest email of kind sent to
// recipient and returns the token in its link. The log mailer is the only
// way to observe emails from outside the container.
func (c *serviceContainer) linkToken(t *testing.T, kind, recipient string) string {
	t.Helper()

	var token string
	require.Eventually(t, func() bool {
		rc, err := c.Logs(context.Background())
		if err != nil {
			return false
		}
		defer rc.Close()

		sc := bufio.NewScanner(rc)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			line := sc.Text()
			start := strings.IndexByte(line, '{')
			if start < 0 {
				continue
			}
			var entry struct {
				Msg  string `json:"msg"`
				To   string `json:"to"`
				Link string `json:"link"`
			}
			if json.Unmarshal([]byte(line[start:]), &entry) != nil {
				continue
			}
			if entry.Msg != kind || entry.To != recipient {
				continue
			}
			if u, err := url.Parse(entry.Link); err == nil && u.Query().Get("token") != "" {
				token = u.Query().Get("token")
			}
		}
		return token != ""
	}, 10*time.Second, 200*time.Millisecond, "no %q for %s in container log", kind, recipient)

	return token
}

// join invites email into the admin's organization and accepts the invite.
func (c *serviceContainer) join(t *testing.T, admin *tasksdk.Session, email, role string) *tasksdk.Session {
	t.Helper()

	resp, err := admin.InviteUsers(t.Context(), tasksdk.InviteSpec{Email: email, Role: role})
	require.NoError(t, err)
	require.Equal(t, 1, resp.SuccessCount)

	token := c.linkToken(t, "invite email", email)
	_, err = c.client.AcceptInvite(t.Context(), tasksdk.AcceptInviteRequest{
		Token:     token,
		Password:  testPassword,
		FirstName: "Mia",
		LastName:  "Member",
	})
	require.NoError(t, err)

	sess, _, err := c.client.Login(t.Context(), tasksdk.LoginRequest{Email: email, Password: testPassword})
	require.NoError(t, err)
	return sess
}

func requireStatus(t *testing.T, err error, status int, msgAndArgs ...any) {
	t.Helper()
	require.Error(t, err, msgAndArgs...)
	require.Equal(t, status, tasksdk.StatusCode(err), msgAndArgs...)
}
