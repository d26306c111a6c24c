// Package templates manages named style configurations and the active-template pointer.
package templates

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/store"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrBuiltinTemplate  = errors.New("built-in templates cannot be deleted")
	ErrNoTemplates      = errors.New("no templates loaded")
)

// SettingsPatch is a shallow merge over TemplateSettings. Nil fields are left unchanged.
type SettingsPatch struct {
	PrimaryColor       *string
	FontFamily         *string
	ShowLogo           *bool
	ShowPaymentDetails *bool
	ShowSignature      *bool
	FooterText         *string
}

func (p SettingsPatch) apply(s domain.TemplateSettings) domain.TemplateSettings {
	if p.PrimaryColor != nil {
		s.PrimaryColor = *p.PrimaryColor
	}
	if p.FontFamily != nil {
		s.FontFamily = *p.FontFamily
	}
	if p.ShowLogo != nil {
		s.ShowLogo = *p.ShowLogo
	}
	if p.ShowPaymentDetails != nil {
		s.ShowPaymentDetails = *p.ShowPaymentDetails
	}
	if p.ShowSignature != nil {
		s.ShowSignature = *p.ShowSignature
	}
	if p.FooterText != nil {
		s.FooterText = *p.FooterText
	}
	return s
}

// Patch changes a template's descriptive fields
type Patch struct {
	Name        *string
	Description *string
}

// NewTemplate describes a custom template. Zero Settings copy the default template's.
type NewTemplate struct {
	Name        string
	Description string
	Settings    *domain.TemplateSettings
}

// Registry holds every template and the active pointer. All mutations persist
// the template list and the active id together before updating memory.
type Registry struct {
	mu        sync.RWMutex
	store     store.Store
	logger    *zap.Logger
	templates []domain.Template
	activeID  string
}

// NewRegistry creates an empty registry. Call Load before use.
func NewRegistry(s store.Store, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{store: s, logger: logger}
}

// Load reads templates from the store, seeding the built-ins when none exist
func (r *Registry) Load(ctx context.Context) error {
	var templates []domain.Template
	if _, err := store.GetJSON(ctx, r.store, store.KeyTemplates, &templates); err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	var activeID string
	if _, err := store.GetJSON(ctx, r.store, store.KeyActiveTemplateID, &activeID); err != nil {
		return fmt.Errorf("failed to load active template: %w", err)
	}

	if len(templates) == 0 {
		templates = Builtins()
		activeID = DefaultTemplateID
		if err := r.persist(ctx, templates, activeID); err != nil {
			return fmt.Errorf("failed to seed templates: %w", err)
		}
		r.logger.Info("seeded built-in templates", zap.Int("count", len(templates)))
	}

	r.mu.Lock()
	r.templates = templates
	r.activeID = activeID
	r.mu.Unlock()
	return nil
}

// List returns a copy of all templates in order
func (r *Registry) List() []domain.Template {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Template, len(r.templates))
	copy(out, r.templates)
	return out
}

// Get looks up a template by id
func (r *Registry) Get(id string) (domain.Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return domain.Template{}, false
	}
	return r.templates[idx], true
}

// ActiveID returns the stored active pointer, which may be stale
func (r *Registry) ActiveID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeID
}

// GetActive resolves the active template, falling back to the default
// template and then to the first one.
func (r *Registry) GetActive() (domain.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if idx := r.indexOf(r.activeID); idx >= 0 {
		return r.templates[idx], nil
	}
	for _, t := range r.templates {
		if t.IsDefault {
			return t, nil
		}
	}
	if len(r.templates) > 0 {
		return r.templates[0], nil
	}
	return domain.Template{}, ErrNoTemplates
}

// SetActive makes id the active template
func (r *Registry) SetActive(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(id) < 0 {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	if err := r.commit(ctx, r.templates, id); err != nil {
		return err
	}
	r.logger.Info("active template changed", zap.String("template", id))
	return nil
}

// UpdateSettings merges patch into the template's settings
func (r *Registry) UpdateSettings(ctx context.Context, id string, patch SettingsPatch) (domain.Template, error) {
	return r.modify(ctx, id, func(t *domain.Template) error {
		t.Settings = patch.apply(t.Settings)
		return nil
	})
}

// Update changes the template's name or description
func (r *Registry) Update(ctx context.Context, id string, patch Patch) (domain.Template, error) {
	return r.modify(ctx, id, func(t *domain.Template) error {
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return &domain.ValidationError{Field: "name", Message: "template name is required"}
			}
			t.Name = name
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		return nil
	})
}

// Create adds a custom template and makes it active
func (r *Registry) Create(ctx context.Context, nt NewTemplate) (domain.Template, error) {
	name := strings.TrimSpace(nt.Name)
	if name == "" {
		return domain.Template{}, &domain.ValidationError{Field: "name", Message: "template name is required"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t := domain.Template{
		ID:          "custom-" + uuid.NewString(),
		Name:        name,
		Description: nt.Description,
		Custom:      true,
	}
	if nt.Settings != nil {
		t.Settings = *nt.Settings
	} else {
		t.Settings = Builtins()[0].Settings
		if idx := r.indexOf(DefaultTemplateID); idx >= 0 {
			t.Settings = r.templates[idx].Settings
		}
	}

	templates := make([]domain.Template, 0, len(r.templates)+1)
	templates = append(templates, r.templates...)
	templates = append(templates, t)

	if err := r.commit(ctx, templates, t.ID); err != nil {
		return domain.Template{}, err
	}
	r.logger.Info("template created", zap.String("template", t.ID), zap.String("name", t.Name))
	return t, nil
}

// Delete removes a custom template. Deleting the active template makes the
// default template active.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	if isBuiltin(id) || !r.templates[idx].Custom {
		return fmt.Errorf("%w: %s", ErrBuiltinTemplate, id)
	}

	templates := make([]domain.Template, 0, len(r.templates)-1)
	templates = append(templates, r.templates[:idx]...)
	templates = append(templates, r.templates[idx+1:]...)

	activeID := r.activeID
	if activeID == id {
		activeID = DefaultTemplateID
	}

	if err := r.commit(ctx, templates, activeID); err != nil {
		return err
	}
	r.logger.Info("template deleted", zap.String("template", id), zap.String("active", activeID))
	return nil
}

func (r *Registry) modify(ctx context.Context, id string, fn func(*domain.Template) error) (domain.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return domain.Template{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}

	templates := make([]domain.Template, len(r.templates))
	copy(templates, r.templates)
	if err := fn(&templates[idx]); err != nil {
		return domain.Template{}, err
	}

	if err := r.commit(ctx, templates, r.activeID); err != nil {
		return domain.Template{}, err
	}
	return templates[idx], nil
}

// commit persists and then swaps in-memory state. Caller holds the write lock.
func (r *Registry) commit(ctx context.Context, templates []domain.Template, activeID string) error {
	if err := r.persist(ctx, templates, activeID); err != nil {
		return fmt.Errorf("failed to save templates: %w", err)
	}
	r.templates = templates
	r.activeID = activeID
	return nil
}

func (r *Registry) persist(ctx context.Context, templates []domain.Template, activeID string) error {
	return store.NewBatch().
		Put(store.KeyTemplates, templates).
		Put(store.KeyActiveTemplateID, activeID).
		Commit(ctx, r.store)
}

func (r *Registry) indexOf(id string) int {
	for i, t := range r.templates {
		if t.ID == id {
			return i
		}
	}
	return -1
}
