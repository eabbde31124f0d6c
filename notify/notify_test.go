package notify_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/virel-project/virel-social/logger"
	"github.com/virel-project/virel-social/notify"

	"github.com/zeebo/assert"
)

func TestRecorder(t *testing.T) {
	var next notify.Recorder
	r := &notify.Recorder{Next: &next}

	r.Notify(notify.Notification{Kind: notify.Info, Message: "Confirming transaction: abcd...wxyz", Link: "http://x/tx"})
	r.Notify(notify.Notification{Kind: notify.Failure, Message: "Unable to follow, try again later."})

	all := r.All()
	assert.Equal(t, len(all), 2)
	assert.Equal(t, all[0].Kind, notify.Info)
	assert.False(t, all[0].Time.IsZero())
	assert.Equal(t, r.Count(notify.Failure), 1)
	assert.Equal(t, r.Count(notify.Success), 0)
	assert.Equal(t, len(next.All()), 2)

	// All returns a copy
	all[0].Message = "changed"
	assert.NotEqual(t, r.All()[0].Message, "changed")

	r.Reset()
	assert.Equal(t, len(r.All()), 0)
}

func TestLogNotifier(t *testing.T) {
	var out bytes.Buffer
	log := logger.New()
	log.SetStdout(&out)
	log.SetStderr(&out)

	n := notify.LogNotifier{Log: log}
	n.Notify(notify.Notification{Kind: notify.Success, Message: "Followed: abcd...wxyz", Link: "http://x/tx/1"})

	assert.That(t, strings.Contains(out.String(), "[success] Followed: abcd...wxyz (http://x/tx/1)"))
}
