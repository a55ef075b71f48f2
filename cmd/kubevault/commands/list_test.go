package commands_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/kubevault/cmd/kubevault/commands"
	"github.com/systmms/kubevault/internal/logging"
)

const listFixture = `---
apiVersion: apps/v1
kind: Deployment
metadata:
  name: my-app
spec:
  template:
    spec:
      volumes:
        - name: creds
          secret:
            secretName: db-creds
      containers:
        - name: app
          image: registry.example.com/app:1.0
          env:
            - name: DB_PASSWORD
              valueFrom:
                secretKeyRef:
                  name: db
                  key: password
          envFrom:
            - secretRef:
                name: app-config
          volumeMounts:
            - name: creds
              mountPath: /var/secrets/db
          args:
            - --password-file=/var/secrets/db/password
`

func newTestOptions(logs *bytes.Buffer) *commands.Options {
	return &commands.Options{Logger: logging.NewWithWriter(logs, false, true)}
}

func TestListCommand_Text(t *testing.T) {
	t.Parallel()

	var logs, out bytes.Buffer
	cmd := commands.NewListCommand(newTestOptions(&logs))
	cmd.SetIn(strings.NewReader(listFixture))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.Execute())

	text := out.String()
	assert.Contains(t, text, "ENVIRONMENT SECRETS")
	assert.Contains(t, text, "Secret 'db'")
	assert.Contains(t, text, "    password")
	assert.Contains(t, text, "SECRET REFERENCES")
	assert.Contains(t, text, "Secret 'app-config'")
	assert.Contains(t, text, "VOLUME SECRETS")
	assert.Contains(t, text, "Secret 'db-creds'")
	assert.Contains(t, text, "Container: app")
	assert.Contains(t, text, "Volume Name: creds")
	assert.Contains(t, text, "/var/secrets/db")
	assert.Contains(t, text, "--password-file=/var/secrets/db/password")
}

func TestListCommand_JSON(t *testing.T) {
	t.Parallel()

	var logs, out bytes.Buffer
	cmd := commands.NewListCommand(newTestOptions(&logs))
	cmd.SetIn(strings.NewReader(listFixture))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--json"})

	require.NoError(t, cmd.Execute())

	var parsed struct {
		EnvSecrets map[string][]string `json:"envSecrets"`
		SecretRefs []string            `json:"secretRefs"`
		VolumeSecrets map[string][]struct {
			VolumeName string   `json:"volumeName"`
			MountedIn  string   `json:"mountedIn"`
			MountPaths []string `json:"mountPaths"`
			Usages     []string `json:"usages"`
		} `json:"volumeSecrets"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &parsed))

	assert.Equal(t, map[string][]string{"db": {"password"}}, parsed.EnvSecrets)
	assert.Equal(t, []string{"app-config"}, parsed.SecretRefs)
	require.Len(t, parsed.VolumeSecrets["db-creds"], 1)
	usage := parsed.VolumeSecrets["db-creds"][0]
	assert.Equal(t, "creds", usage.VolumeName)
	assert.Equal(t, "app", usage.MountedIn)
	assert.Equal(t, []string{"/var/secrets/db"}, usage.MountPaths)
	assert.Equal(t, []string{"--password-file=/var/secrets/db/password"}, usage.Usages)
}

func TestListCommand_InvalidStream(t *testing.T) {
	t.Parallel()

	var logs, out bytes.Buffer
	cmd := commands.NewListCommand(newTestOptions(&logs))
	cmd.SetIn(strings.NewReader("key: [unclosed\n"))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(nil)

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to parse manifest stream")
	assert.Contains(t, err.Error(), "helm template")
}

func TestListCommand_MissingFile(t *testing.T) {
	t.Parallel()

	var logs, out bytes.Buffer
	opts := newTestOptions(&logs)
	opts.File = "/does/not/exist.yaml"
	cmd := commands.NewListCommand(opts)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(nil)

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to open manifest file")
}
