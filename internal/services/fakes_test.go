package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pulse-crm/backend/internal/events"
	"github.com/pulse-crm/backend/internal/mailer"
	"github.com/pulse-crm/backend/internal/models"
	"github.com/pulse-crm/backend/internal/repositories"
)

type fakeContacts struct {
	mu   sync.Mutex
	rows []models.Contact
}

func (f *fakeContacts) Create(_ context.Context, c *models.Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = uuid.New()
	f.rows = append(f.rows, *c)
	return nil
}

func (f *fakeContacts) GetByID(_ context.Context, id uuid.UUID) (*models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			c := f.rows[i]
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeContacts) GetByEmail(_ context.Context, email string) (*models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if strings.EqualFold(f.rows[i].Email, email) {
			c := f.rows[i]
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeContacts) Update(_ context.Context, c *models.Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == c.ID {
			f.rows[i] = *c
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeContacts) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeContacts) List(ctx context.Context, _ repositories.ContactFilter) ([]models.Contact, error) {
	return f.ListAll(ctx)
}

func (f *fakeContacts) ListAll(context.Context) ([]models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Contact(nil), f.rows...), nil
}

func (f *fakeContacts) ListByGroup(_ context.Context, group string) ([]models.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Contact
	for _, c := range f.rows {
		if c.Group == group {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeContacts) UpdatePreferences(_ context.Context, p models.Preferences) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for i := range f.rows {
		if strings.EqualFold(f.rows[i].Email, p.Email) {
			f.rows[i].Opt1, f.rows[i].Opt2, f.rows[i].Opt3 = p.Opt1, p.Opt2, p.Opt3
			n++
		}
	}
	return n, nil
}

func (f *fakeContacts) Unsubscribe(_ context.Context, email, group, note string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for i := range f.rows {
		c := &f.rows[i]
		if !strings.EqualFold(c.Email, email) {
			continue
		}
		c.Opt1, c.Opt2, c.Opt3 = false, false, false
		c.Group = group
		if c.Notes == "" {
			c.Notes = note
		} else {
			c.Notes += "\n" + note
		}
		n++
	}
	return n, nil
}

type fakeCampaigns struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.Campaign
	// drained reports whether a campaign has no unfinished queue entries
	drained func(uuid.UUID) bool
}

func newFakeCampaigns(cs ...*models.Campaign) *fakeCampaigns {
	f := &fakeCampaigns{rows: map[uuid.UUID]*models.Campaign{}}
	for _, c := range cs {
		f.rows[c.ID] = c
	}
	return f
}

func (f *fakeCampaigns) Create(_ context.Context, c *models.Campaign) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = uuid.New()
	cp := *c
	f.rows[c.ID] = &cp
	return nil
}

func (f *fakeCampaigns) GetByID(_ context.Context, id uuid.UUID) (*models.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCampaigns) Update(_ context.Context, c *models.Campaign) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[c.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *c
	f.rows[c.ID] = &cp
	return nil
}

func (f *fakeCampaigns) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok {
		return repositories.ErrNotFound
	}
	c.Status = status
	return nil
}

func (f *fakeCampaigns) CompleteIfDrained(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok || c.Status != models.CampaignStatusSending {
		return false, nil
	}
	if f.drained != nil && !f.drained(id) {
		return false, nil
	}
	c.Status = models.CampaignStatusSent
	return true, nil
}

func (f *fakeCampaigns) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeCampaigns) List(_ context.Context, cf repositories.CampaignFilter) ([]models.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Campaign
	for _, c := range f.rows {
		if cf.Type != nil && c.Type != *cf.Type {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

// fakeSchedules keeps schedules and the queue together so Fire can stay atomic like the
// transactional repository.
type fakeSchedules struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]*models.Schedule
	campaigns *fakeCampaigns
	queue     *fakeQueue
	fireErr   map[uuid.UUID]error
}

func newFakeSchedules(campaigns *fakeCampaigns, queue *fakeQueue) *fakeSchedules {
	return &fakeSchedules{
		rows:      map[uuid.UUID]*models.Schedule{},
		campaigns: campaigns,
		queue:     queue,
		fireErr:   map[uuid.UUID]error{},
	}
}

func (f *fakeSchedules) add(s models.Schedule) *models.Schedule {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = models.ScheduleStatusScheduled
	}
	f.rows[s.ID] = &s
	return &s
}

func (f *fakeSchedules) status(id uuid.UUID) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id].Status
}

func (f *fakeSchedules) Create(_ context.Context, s *models.Schedule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = uuid.New()
	cp := *s
	f.rows[s.ID] = &cp
	return nil
}

func (f *fakeSchedules) joined(s *models.Schedule) models.ScheduleWithCampaign {
	out := models.ScheduleWithCampaign{Schedule: *s}
	if c, err := f.campaigns.GetByID(context.Background(), s.CampaignID); err == nil {
		out.CampaignTitle = c.Title
		out.CampaignSubject = c.Subject
	}
	return out
}

func (f *fakeSchedules) GetByID(_ context.Context, id uuid.UUID) (*models.ScheduleWithCampaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	j := f.joined(s)
	return &j, nil
}

func (f *fakeSchedules) List(context.Context, repositories.ScheduleFilter) ([]models.ScheduleWithCampaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ScheduleWithCampaign
	for _, s := range f.rows {
		out = append(out, f.joined(s))
	}
	return out, nil
}

func (f *fakeSchedules) ListDue(_ context.Context, now time.Time, limit int) ([]models.ScheduleWithCampaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ScheduleWithCampaign
	for _, s := range f.rows {
		if s.Status == models.ScheduleStatusScheduled && !s.ScheduledAt.After(now) {
			out = append(out, f.joined(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSchedules) UpdatePending(_ context.Context, s *models.Schedule) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.rows[s.ID]
	if !ok || cur.Status != models.ScheduleStatusScheduled {
		return false, nil
	}
	cp := *s
	f.rows[s.ID] = &cp
	return true, nil
}

func (f *fakeSchedules) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeSchedules) Claim(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[id]
	if !ok || !models.IsValidScheduleTransition(s.Status, models.ScheduleStatusProcessing) {
		return false, nil
	}
	s.Status = models.ScheduleStatusProcessing
	return true, nil
}

func (f *fakeSchedules) Fire(_ context.Context, s *models.Schedule, recipients []models.Recipient) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fireErr[s.ID]; err != nil {
		return 0, err
	}
	cur := f.rows[s.ID]
	if cur == nil || !models.IsValidScheduleTransition(cur.Status, models.ScheduleStatusSent) {
		return 0, repositories.ErrNotFound
	}
	for _, r := range recipients {
		sid := s.ID
		f.queue.push(models.QueueEntry{
			CampaignID: s.CampaignID,
			ScheduleID: &sid,
			ContactID:  r.ContactID,
			Email:      r.Email,
			Name:       r.Name,
		})
	}
	cur.Status = models.ScheduleStatusSent
	_ = f.campaigns.UpdateStatus(context.Background(), s.CampaignID, models.CampaignStatusSending)
	return int64(len(recipients)), nil
}

func (f *fakeSchedules) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if !models.IsValidScheduleTransition(s.Status, models.ScheduleStatusFailed) {
		return nil
	}
	s.Status = models.ScheduleStatusFailed
	s.ErrorMessage = &reason
	return nil
}

type fakeQueue struct {
	mu      sync.Mutex
	entries []models.QueueEntry
}

func (f *fakeQueue) push(e models.QueueEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = uuid.New()
	e.Status = models.QueueStatusPending
	f.entries = append(f.entries, e)
}

func (f *fakeQueue) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func (f *fakeQueue) drained(campaignID uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.CampaignID == campaignID && (e.Status == models.QueueStatusPending || e.Status == models.QueueStatusSending) {
			return false
		}
	}
	return true
}

func (f *fakeQueue) ClaimPending(_ context.Context, limit int) ([]models.QueueEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.QueueEntry
	for i := range f.entries {
		if len(out) == limit {
			break
		}
		if f.entries[i].Status == models.QueueStatusPending {
			f.entries[i].Status = models.QueueStatusSending
			out = append(out, f.entries[i])
		}
	}
	return out, nil
}

func (f *fakeQueue) set(id uuid.UUID, status string, reason *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		if f.entries[i].ID == id {
			f.entries[i].Status = status
			f.entries[i].ErrorMessage = reason
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeQueue) MarkSent(_ context.Context, id uuid.UUID) error {
	return f.set(id, models.QueueStatusSent, nil)
}

func (f *fakeQueue) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	return f.set(id, models.QueueStatusFailed, &reason)
}

func (f *fakeQueue) Requeue(_ context.Context, id uuid.UUID) error {
	return f.set(id, models.QueueStatusPending, nil)
}

func (f *fakeQueue) Stats(_ context.Context, campaignID *uuid.UUID) (models.QueueStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var st models.QueueStats
	for _, e := range f.entries {
		if campaignID != nil && e.CampaignID != *campaignID {
			continue
		}
		switch e.Status {
		case models.QueueStatusPending:
			st.Pending++
		case models.QueueStatusSending:
			st.Sending++
		case models.QueueStatusSent:
			st.Sent++
		case models.QueueStatusFailed:
			st.Failed++
		}
		st.Total++
	}
	return st, nil
}

type fakeOpens struct {
	mu   sync.Mutex
	rows []models.Open
	err  error
}

func (f *fakeOpens) Record(_ context.Context, o *models.Open) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	o.ID = int64(len(f.rows) + 1)
	f.rows = append(f.rows, *o)
	return nil
}

func (f *fakeOpens) Stats(_ context.Context, campaignID string) (models.OpenStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var st models.OpenStats
	seen := map[string]bool{}
	for _, o := range f.rows {
		if o.CampaignID != campaignID {
			continue
		}
		st.Total++
		if k := strings.ToLower(o.Email); !seen[k] {
			seen[k] = true
			st.Unique++
		}
	}
	return st, nil
}

type fakeUsers struct {
	mu   sync.Mutex
	rows []models.User
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if strings.EqualFold(r.Email, u.Email) {
			return repositories.ErrDuplicate
		}
	}
	u.ID = uuid.New()
	u.Email = strings.ToLower(u.Email)
	f.rows = append(f.rows, *u)
	return nil
}

func (f *fakeUsers) find(match func(models.User) bool) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if match(r) {
			u := r
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return f.find(func(u models.User) bool { return u.ID == id })
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return f.find(func(u models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (f *fakeUsers) List(context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.User(nil), f.rows...), nil
}

func (f *fakeUsers) Update(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == u.ID {
			f.rows[i] = *u
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].PasswordHash = hash
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeUsers) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

type nopAudit struct{}

func (nopAudit) Log(context.Context, models.AuditLog) error { return nil }

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) count(typ string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

type fakeSender struct {
	mu   sync.Mutex
	sent []mailer.Message
	fail map[string]error
}

func (s *fakeSender) Send(_ context.Context, m mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail[m.To]; err != nil {
		return err
	}
	s.sent = append(s.sent, m)
	return nil
}

type heldLocker struct{}

func (heldLocker) Acquire(context.Context, string, time.Duration) (func(), error) { return nil, nil }

// fakeGroups enforces the unique name constraint like the contact_groups table.
type fakeGroups struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.ContactGroup
}

func newFakeGroups() *fakeGroups {
	return &fakeGroups{rows: map[uuid.UUID]*models.ContactGroup{}}
}

func (f *fakeGroups) taken(name string, except uuid.UUID) bool {
	for id, g := range f.rows {
		if id != except && g.Name == name {
			return true
		}
	}
	return false
}

func (f *fakeGroups) Create(_ context.Context, g *models.ContactGroup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.taken(g.Name, uuid.Nil) {
		return repositories.ErrDuplicate
	}
	g.ID = uuid.New()
	cp := *g
	f.rows[g.ID] = &cp
	return nil
}

func (f *fakeGroups) GetByID(_ context.Context, id uuid.UUID) (*models.ContactGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (f *fakeGroups) List(context.Context) ([]models.ContactGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ContactGroup
	for _, g := range f.rows {
		out = append(out, *g)
	}
	return out, nil
}

func (f *fakeGroups) Update(_ context.Context, g *models.ContactGroup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[g.ID]; !ok {
		return repositories.ErrNotFound
	}
	if f.taken(g.Name, g.ID) {
		return repositories.ErrDuplicate
	}
	cp := *g
	f.rows[g.ID] = &cp
	return nil
}

func (f *fakeGroups) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeTemplates struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.Template
}

func newFakeTemplates() *fakeTemplates {
	return &fakeTemplates{rows: map[uuid.UUID]*models.Template{}}
}

func (f *fakeTemplates) taken(name string, except uuid.UUID) bool {
	for id, t := range f.rows {
		if id != except && t.Name == name {
			return true
		}
	}
	return false
}

func (f *fakeTemplates) Create(_ context.Context, t *models.Template) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.taken(t.Name, uuid.Nil) {
		return repositories.ErrDuplicate
	}
	t.ID = uuid.New()
	cp := *t
	f.rows[t.ID] = &cp
	return nil
}

func (f *fakeTemplates) GetByID(_ context.Context, id uuid.UUID) (*models.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTemplates) Update(_ context.Context, t *models.Template) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[t.ID]; !ok {
		return repositories.ErrNotFound
	}
	if f.taken(t.Name, t.ID) {
		return repositories.ErrDuplicate
	}
	cp := *t
	f.rows[t.ID] = &cp
	return nil
}

func (f *fakeTemplates) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeTemplates) List(_ context.Context, category *string) ([]models.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Template
	for _, t := range f.rows {
		if category != nil && t.Category != *category {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}
