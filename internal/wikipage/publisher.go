package wikipage

import (
	"context"
	"errors"
	"fmt"

	"github.com/joaovitor3/osm-tm-communication/internal/document"
)

// Client is the slice of the MediaWiki API the publisher needs.
type Client interface {
	PageText(ctx context.Context, title string) (string, error)
	PageExists(ctx context.Context, title string) (bool, error)
	CreatePage(ctx context.Context, title, text string) error
	EditPage(ctx context.Context, title, text string) error
}

// Publisher pushes a project's documentation to the wiki. Page writes
// are strictly sequential: overview, then organisation activity page,
// then the project page, so a failure leaves earlier pages published
// and the error tells the operator where the run stopped.
type Publisher struct {
	wiki Client
}

func NewPublisher(wiki Client) *Publisher {
	return &Publisher{wiki: wiki}
}

// PublishProject documents a newly created project: a row on the
// activities overview, the organisation activity page (created the
// first time the organisation publishes), and a fresh project page.
// An existing project page surfaces as ErrPageExists from the client.
func (p *Publisher) PublishProject(ctx context.Context, doc document.Document) error {
	if err := p.upsert(ctx, KindOverview, doc); err != nil {
		return fmt.Errorf("overview page: %w", err)
	}
	if err := p.upsert(ctx, KindOrgActivity, doc); err != nil {
		return fmt.Errorf("organisation activity page: %w", err)
	}

	project := registry[KindProject]
	text, err := RenderNew(project, doc)
	if err != nil {
		return fmt.Errorf("project page: %w", err)
	}
	if err := p.wiki.CreatePage(ctx, project.Title(doc), text); err != nil {
		return fmt.Errorf("project page: %w", err)
	}
	return nil
}

// UpdateProject patches the project page with a partial document. The
// partial must carry the project title, which is how the page is found;
// a page that was never published surfaces as ErrPageNotFound.
func (p *Publisher) UpdateProject(ctx context.Context, partial document.Document) error {
	page := registry[KindProject]
	title := page.Title(partial)
	if title == "" {
		return errors.New("update project page: document carries no project title")
	}

	existing, err := p.wiki.PageText(ctx, title)
	if err != nil {
		return fmt.Errorf("project page: %w", err)
	}
	text, err := RenderPatched(page, existing, partial)
	if err != nil {
		return fmt.Errorf("project page: %w", err)
	}
	if err := p.wiki.EditPage(ctx, title, text); err != nil {
		return fmt.Errorf("project page: %w", err)
	}
	return nil
}

// upsert creates the page from its template when it does not exist yet
// and patches the live text when it does.
func (p *Publisher) upsert(ctx context.Context, kind Kind, doc document.Document) error {
	page := registry[kind]
	title := page.Title(doc)

	exists, err := p.wiki.PageExists(ctx, title)
	if err != nil {
		return err
	}
	if !exists {
		text, err := RenderNew(page, doc)
		if err != nil {
			return err
		}
		return p.wiki.CreatePage(ctx, title, text)
	}

	existing, err := p.wiki.PageText(ctx, title)
	if err != nil {
		return err
	}
	text, err := RenderPatched(page, existing, doc)
	if err != nil {
		return err
	}
	return p.wiki.EditPage(ctx, title, text)
}
