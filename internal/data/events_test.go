package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panostzan/0500/internal"
)

func TestBusDispatchesToTopicSubscribers(t *testing.T) {
	bus := NewBus()
	var goals, schedule int
	bus.Subscribe(TopicGoalsChanged, func(Topic) { goals++ })
	bus.Subscribe(TopicGoalsChanged, func(Topic) { goals++ })
	bus.Subscribe(TopicScheduleChanged, func(Topic) { schedule++ })

	bus.Publish(TopicGoalsChanged)
	assert.Equal(t, 2, goals, "every subscriber of the topic is notified")
	assert.Zero(t, schedule, "other topics stay quiet")

	bus.Publish(TopicNotesChanged)
	assert.Equal(t, 2, goals)
}

func TestServicePublishesOnSave(t *testing.T) {
	svc, _ := newTestService(t, nil)
	events := 0
	svc.Bus().Subscribe(TopicGoalsChanged, func(Topic) { events++ })

	require.NoError(t, svc.SaveGoals(context.Background(), sampleGoals()))
	assert.Equal(t, 1, events)

	require.NoError(t, svc.ClearGoals(context.Background()))
	assert.Equal(t, 2, events)
}

func TestServicePublishesOnSleepChange(t *testing.T) {
	svc, _ := newTestService(t, nil)
	events := 0
	svc.Bus().Subscribe(TopicSleepLogChanged, func(Topic) { events++ })

	require.NoError(t, svc.UpsertSleepEntry(context.Background(), internal.SleepRecord{Date: "2026-08-30"}))
	require.NoError(t, svc.DeleteSleepEntry(context.Background(), "2026-08-30"))
	assert.Equal(t, 2, events)
}
