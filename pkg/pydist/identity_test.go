package pydist

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeQuery(responses map[string]string, err error) QueryFunc {
	return func(ctx context.Context, dir, python string, args ...string) (string, error) {
		if err != nil {
			return "", err
		}
		return responses[args[len(args)-1]], nil
	}
}

func TestResolve(t *testing.T) {
	resolver := NewResolver("python3", ".").WithQuery(fakeQuery(map[string]string{
		"--name":    "my-tool\n",
		"--version": "1.2.3\n",
	}, nil))

	id, err := resolver.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Identity{Name: "my-tool", Version: "1.2.3"}, id)
}

func TestResolveSkipsWarnings(t *testing.T) {
	resolver := NewResolver("python3", ".").WithQuery(fakeQuery(map[string]string{
		"--name":    "warning: setuptools is deprecated\nmy-tool\n",
		"--version": "1.2.3\n",
	}, nil))

	id, err := resolver.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "my-tool", id.Name)
}

func TestResolveCommandFailure(t *testing.T) {
	resolver := NewResolver("python3", ".").WithQuery(fakeQuery(nil, eris.New("exit status 1")))

	_, err := resolver.Resolve(context.Background())
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMetadataResolution))
}

func TestResolveEmptyOutput(t *testing.T) {
	resolver := NewResolver("python3", ".").WithQuery(fakeQuery(map[string]string{
		"--name": "\n",
	}, nil))

	_, err := resolver.Resolve(context.Background())
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMetadataResolution))
}
