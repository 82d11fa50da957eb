package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	msgs      []kafka.Message
	err       error
	i         int
	committed []kafka.Message
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if r.i < len(r.msgs) {
		m := r.msgs[r.i]
		r.i++
		return m, nil
	}
	if r.err != nil {
		return kafka.Message{}, r.err
	}
	return kafka.Message{}, errors.New("eof")
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func TestConsumer_Consume_CallsHandlerAndCommits(t *testing.T) {
	fr := &fakeReader{
		msgs: []kafka.Message{{Key: []byte("store-1"), Value: []byte("v")}},
		err:  errors.New("stop"),
	}
	c := newConsumerWithReader(fr)

	var gotK, gotV []byte
	err := c.Consume(context.Background(), func(k, v []byte) error {
		gotK, gotV = k, v
		return nil
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "fetch message")
	require.Equal(t, []byte("store-1"), gotK)
	require.Equal(t, []byte("v"), gotV)
	require.Len(t, fr.committed, 1)
}

func TestConsumer_Consume_HandlerErrorStopsWithoutCommit(t *testing.T) {
	fr := &fakeReader{msgs: []kafka.Message{{Topic: "t", Offset: 7, Key: []byte("k"), Value: []byte("v")}}}
	c := newConsumerWithReader(fr).WithRetry(3, 0)

	calls := 0
	want := errors.New("handler failed")
	err := c.Consume(context.Background(), func(k, v []byte) error {
		calls++
		return want
	})
	require.ErrorIs(t, err, want)
	require.Contains(t, err.Error(), "t/0@7")
	require.Equal(t, 3, calls)
	require.Empty(t, fr.committed)
}

func TestConsumer_Consume_RetriesTransientHandlerError(t *testing.T) {
	fr := &fakeReader{
		msgs: []kafka.Message{{Key: []byte("k"), Value: []byte("v")}},
		err:  errors.New("stop"),
	}
	c := newConsumerWithReader(fr).WithRetry(3, 0)

	calls := 0
	err := c.Consume(context.Background(), func(k, v []byte) error {
		calls++
		if calls == 1 {
			return errors.New("redis blip")
		}
		return nil
	})
	require.ErrorContains(t, err, "fetch message")
	require.Equal(t, 2, calls)
	require.Len(t, fr.committed, 1)
}

func TestConsumer_Consume_CancelledContextIsNotWrapped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := newConsumerWithReader(&fakeReader{err: context.Canceled})

	err := c.Consume(ctx, func(k, v []byte) error { return nil })
	require.Equal(t, context.Canceled, err)
}

func TestConsumer_Close(t *testing.T) {
	fr := &fakeReader{}
	require.NoError(t, newConsumerWithReader(fr).Close())
	require.True(t, fr.closed)
}

func TestNewConsumer_Close(t *testing.T) {
	c := NewConsumer([]string{"localhost:0"}, "t", "g")
	require.NotNil(t, c)
	require.NoError(t, c.Close())
}
