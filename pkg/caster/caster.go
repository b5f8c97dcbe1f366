package caster

import (
	"encoding/json"

	"f1dashboard/log"
)

// ChannelCaster converts values to the string payload carried by pubsub topics.
type ChannelCaster[T any] interface {
	From(string) (T, error)
	To(T) (string, error)
}

type JSONChannelCaster[T any] struct{}

func (jc JSONChannelCaster[T]) From(data string) (T, error) {
	var v T
	err := json.Unmarshal([]byte(data), &v)
	return v, err
}

func (jc JSONChannelCaster[T]) To(v T) (string, error) {
	data, err := json.Marshal(v)
	return string(data), err
}

// Each decodes every payload received on ch and hands it to fn until ch is
// closed. Payloads that cannot be decoded are logged and skipped.
func Each[T any](ch <-chan string, c ChannelCaster[T], fn func(T)) {
	for payload := range ch {
		v, err := c.From(payload)
		if err != nil {
			log.Warn("could not decode payload", log.ErrorField(err))
			continue
		}
		fn(v)
	}
}
