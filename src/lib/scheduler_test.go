package lib

import (
	"testing"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCronJob(t *testing.T) {
	s, err := gocron.NewScheduler()
	require.NoError(t, err)
	NewScheduler(s)
	defer func() {
		_ = s.Shutdown()
		NewScheduler(nil)
	}()

	ran := make(chan string, 1)
	id, err := CreateCronJob("reconcile-test", func(tag string) {
		select {
		case ran <- tag:
		default:
		}
	}, 50*time.Millisecond, "tick")
	require.NoError(t, err)
	assert.NotEmpty(t, *id)
	require.Len(t, s.Jobs(), 1)
	assert.Equal(t, "reconcile-test", s.Jobs()[0].Name())

	s.Start()
	select {
	case tag := <-ran:
		assert.Equal(t, "tick", tag)
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}
}
