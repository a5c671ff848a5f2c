package store

import (
	"context"
	"fmt"
	"time"

	"github.com/foxzi/wadesk/internal/models"
)

type simTask struct {
	cancel context.CancelFunc
}

// StartSimulation starts advancing a campaign's counters every tick until
// every contact has been sent to. It reports whether a new simulation was
// started: a completed campaign or one that is already simulating is left
// alone.
func (c *Campaigns) StartSimulation(id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexLocked(id)
	if idx < 0 {
		return false, fmt.Errorf("campaign %s: %w", id, ErrNotFound)
	}
	if c.campaigns[idx].Status == models.CampaignCompleted {
		return false, nil
	}
	if _, running := c.tasks[id]; running {
		return false, nil
	}

	c.campaigns[idx].Status = models.CampaignSending
	c.persistLocked()

	ctx, cancel := context.WithCancel(context.Background())
	task := &simTask{cancel: cancel}
	c.tasks[id] = task

	c.wg.Add(1)
	go c.simulate(ctx, id, task)

	c.logger.Info("simulation started", "id", id, "total", c.campaigns[idx].TotalContacts)
	return true, nil
}

// StopSimulation cancels a running simulation. It reports whether one was
// running.
func (c *Campaigns) StopSimulation(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopLocked(id)
}

func (c *Campaigns) stopLocked(id string) bool {
	task, ok := c.tasks[id]
	if !ok {
		return false
	}
	task.cancel()
	delete(c.tasks, id)
	return true
}

// Simulating reports whether a simulation is running for a campaign
func (c *Campaigns) Simulating(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.tasks[id]
	return ok
}

// Close stops every simulation and waits for them to exit
func (c *Campaigns) Close() {
	c.mu.Lock()
	for id := range c.tasks {
		c.stopLocked(id)
	}
	c.mu.Unlock()

	c.wg.Wait()
}

func (c *Campaigns) simulate(ctx context.Context, id string, task *simTask) {
	defer c.wg.Done()
	defer func() {
		c.mu.Lock()
		if c.tasks[id] == task {
			delete(c.tasks, id)
		}
		c.mu.Unlock()
		task.cancel()
	}()

	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if done := c.advance(ctx, id); done {
				return
			}
		}
	}
}

// advance performs one simulation tick and reports whether the simulation
// is over
func (c *Campaigns) advance(ctx context.Context, id string) bool {
	c.mu.Lock()

	if ctx.Err() != nil {
		c.mu.Unlock()
		return true
	}
	idx := c.indexLocked(id)
	if idx < 0 || c.campaigns[idx].Status != models.CampaignSending {
		c.mu.Unlock()
		return true
	}

	camp := &c.campaigns[idx]
	stepCounters(camp, c.rnd.IntN)

	done := false
	if camp.SentCount >= camp.TotalContacts {
		camp.SentCount = camp.TotalContacts
		camp.Status = models.CampaignCompleted
		done = true
	}
	snapshot := *camp
	c.persistLocked()
	c.mu.Unlock()

	if done {
		c.logger.Info("simulation completed", "id", id, "sent", snapshot.SentCount)
	}
	if c.observer != nil {
		c.observer(snapshot)
	}
	return done
}

// stepCounters grows sent, delivered and read by bounded random steps.
// Sent always grows by at least one; every counter is clamped to the one
// before it in the chain total >= sent >= delivered >= read.
func stepCounters(camp *models.Campaign, intn func(int) int) {
	total := camp.TotalContacts
	maxStep := max(1, total/10)

	sent := min(total, camp.SentCount+1+intn(maxStep))
	delivered := min(sent, camp.DeliveredCount+intn(maxStep+1))
	read := min(delivered, camp.ReadCount+intn(maxStep+1))

	camp.SentCount = max(camp.SentCount, sent)
	camp.DeliveredCount = max(camp.DeliveredCount, delivered)
	camp.ReadCount = max(camp.ReadCount, read)
}
