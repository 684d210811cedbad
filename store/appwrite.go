package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pevans/technews/article"
	"github.com/pevans/technews/config"
)

// uniqueID asks Appwrite to generate the resource id.
const uniqueID = "unique()"

// AppwriteStore talks to the Appwrite databases and storage REST APIs.
type AppwriteStore struct {
	cfg    config.AppwriteConfig
	client *http.Client
}

// NewAppwriteStore creates an Appwrite-backed store. A nil client uses a
// client with a 30 second timeout. The project id and API key are required.
func NewAppwriteStore(cfg config.AppwriteConfig, client *http.Client) (*AppwriteStore, error) {
	if cfg.ProjectID == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: appwrite store requires a project id and API key", config.ErrMissingCredentials)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")

	return &AppwriteStore{cfg: cfg, client: client}, nil
}

// appwriteDocument is a document as Appwrite returns it: the data fields
// plus system attributes.
type appwriteDocument struct {
	ID        string `json:"$id"`
	CreatedAt string `json:"$createdAt"`
	UpdatedAt string `json:"$updatedAt"`
	documentData
}

// documentData is the attribute set of the articles collection.
type documentData struct {
	Title             string `json:"title"`
	TitleTranslated   string `json:"title_translated"`
	URL               string `json:"url"`
	Summary           string `json:"summary"`
	SummaryTranslated string `json:"summary_translated"`
	ContentTranslated string `json:"content_translated"`
	Source            string `json:"source"`
	ImageURL          string `json:"image_url"`
	PublishedDate     string `json:"published_date"`
	Category          string `json:"category"`
	Status            string `json:"status"`
	ScrapedAt         string `json:"scraped_at"`
}

func toData(doc article.Document) documentData {
	status := doc.Status
	if status == "" {
		status = article.StatusScraped
	}
	scrapedAt := doc.ScrapedAt
	if scrapedAt.IsZero() {
		scrapedAt = time.Now()
	}

	return documentData{
		Title:             doc.Title,
		TitleTranslated:   doc.TitleTranslated,
		URL:               doc.URL,
		Summary:           doc.Summary,
		SummaryTranslated: doc.SummaryTranslated,
		ContentTranslated: doc.ContentTranslated,
		Source:            doc.Source,
		ImageURL:          doc.ImageURL,
		PublishedDate:     doc.PublishedDate,
		Category:          doc.Category,
		Status:            status,
		ScrapedAt:         scrapedAt.UTC().Format(time.RFC3339),
	}
}

func (d appwriteDocument) toDocument() article.Document {
	return article.Document{
		ID:                d.ID,
		Title:             d.Title,
		TitleTranslated:   d.TitleTranslated,
		URL:               d.URL,
		Summary:           d.Summary,
		SummaryTranslated: d.SummaryTranslated,
		ContentTranslated: d.ContentTranslated,
		Source:            d.Source,
		ImageURL:          d.ImageURL,
		PublishedDate:     d.PublishedDate,
		Category:          d.Category,
		Status:            d.Status,
		ScrapedAt:         parseTime(d.ScrapedAt),
		CreatedAt:         parseTime(d.CreatedAt),
		UpdatedAt:         parseTime(d.UpdatedAt),
	}
}

// query is one Appwrite query in its JSON form.
type query struct {
	Method    string `json:"method"`
	Attribute string `json:"attribute,omitempty"`
	Values    []any  `json:"values,omitempty"`
}

func (q query) String() string {
	data, _ := json.Marshal(q)
	return string(data)
}

func (s *AppwriteStore) documentsPath() string {
	return fmt.Sprintf("/databases/%s/collections/%s/documents",
		url.PathEscape(s.cfg.DatabaseID), url.PathEscape(s.cfg.CollectionID))
}

// Create creates a document with an Appwrite-generated id.
func (s *AppwriteStore) Create(ctx context.Context, doc article.Document) (string, error) {
	body := map[string]any{
		"documentId": uniqueID,
		"data":       toData(doc),
	}

	var created appwriteDocument
	if err := s.doJSON(ctx, http.MethodPost, s.documentsPath(), body, &created); err != nil {
		return "", fmt.Errorf("failed to create document: %w", err)
	}
	return created.ID, nil
}

// Get fetches one document.
func (s *AppwriteStore) Get(ctx context.Context, id string) (*article.Document, error) {
	var got appwriteDocument
	if err := s.doJSON(ctx, http.MethodGet, s.documentsPath()+"/"+url.PathEscape(id), nil, &got); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	doc := got.toDocument()
	return &doc, nil
}

// List fetches documents ordered by scraped_at descending.
func (s *AppwriteStore) List(ctx context.Context, limit, offset int) ([]article.Document, error) {
	params := url.Values{}
	params.Add("queries[]", query{Method: "orderDesc", Attribute: "scraped_at"}.String())
	if limit > 0 {
		params.Add("queries[]", query{Method: "limit", Values: []any{limit}}.String())
	}
	if offset > 0 {
		params.Add("queries[]", query{Method: "offset", Values: []any{offset}}.String())
	}

	var resp struct {
		Total     int                `json:"total"`
		Documents []appwriteDocument `json:"documents"`
	}
	if err := s.doJSON(ctx, http.MethodGet, s.documentsPath()+"?"+params.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	docs := make([]article.Document, 0, len(resp.Documents))
	for _, d := range resp.Documents {
		docs = append(docs, d.toDocument())
	}
	return docs, nil
}

// Update patches the given fields.
func (s *AppwriteStore) Update(ctx context.Context, id string, fields map[string]any) error {
	if err := validateFields(fields); err != nil {
		return err
	}

	body := map[string]any{"data": fields}
	if err := s.doJSON(ctx, http.MethodPatch, s.documentsPath()+"/"+url.PathEscape(id), body, nil); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to update document: %w", err)
	}
	return nil
}

// Delete removes a document.
func (s *AppwriteStore) Delete(ctx context.Context, id string) error {
	if err := s.doJSON(ctx, http.MethodDelete, s.documentsPath()+"/"+url.PathEscape(id), nil, nil); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// UploadFile uploads data to the configured storage bucket.
func (s *AppwriteStore) UploadFile(ctx context.Context, data []byte, name string) (string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := form.WriteField("fileId", uniqueID); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	part, err := form.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}

	path := fmt.Sprintf("/storage/buckets/%s/files", url.PathEscape(s.cfg.BucketID))
	req, err := s.newRequest(ctx, http.MethodPost, path, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var file struct {
		ID string `json:"$id"`
	}
	if err := s.do(req, &file); err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	return file.ID, nil
}

// Close is a no-op; the store holds no connections of its own.
func (s *AppwriteStore) Close() error {
	return nil
}

func (s *AppwriteStore) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.cfg.Endpoint+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Appwrite-Project", s.cfg.ProjectID)
	req.Header.Set("X-Appwrite-Key", s.cfg.APIKey)
	return req, nil
}

// doJSON sends body as JSON (when non-nil) and decodes the response into
// out (when non-nil).
func (s *AppwriteStore) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := s.newRequest(ctx, method, path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return s.do(req, out)
}

// do executes req, mapping 404 to ErrNotFound and other non-2xx statuses to
// errors carrying Appwrite's message.
func (s *AppwriteStore) do(req *http.Request, out any) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("appwrite error %d: %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("appwrite error %d", resp.StatusCode)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
