package remote

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kolo/xmlrpc"
)

// Timestamp layout used by the remote store for updated_at values
const timeLayout = "2006-01-02 15:04:05"

// Document is one remote record: the server-assigned id, the server-side
// update timestamp and the remaining payload fields.
type Document struct {
	ID        string
	UpdatedAt time.Time
	Fields    map[string]interface{}
}

// Client talks to the remote document store over XML-RPC. The store exposes
// per-collection create/write/unlink plus search_read with a field filter,
// ascending order and a result limit — everything the delta pull needs.
type Client struct {
	URL        string
	Database   string
	Username   string
	Password   string
	Uid        int
	CommonURL  string
	ObjectURL  string
	HttpClient *http.Client
}

// NewClient creates a new remote store client
func NewClient(url, db, username, password string) *Client {
	return &Client{
		URL:        url,
		Database:   db,
		Username:   username,
		Password:   password,
		CommonURL:  fmt.Sprintf("%s/xmlrpc/2/common", url),
		ObjectURL:  fmt.Sprintf("%s/xmlrpc/2/object", url),
		HttpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Authenticate authenticates against the remote store
func (c *Client) Authenticate() (int, error) {
	client, err := xmlrpc.NewClient(c.CommonURL, nil)
	if err != nil {
		return 0, classify("authenticate", err)
	}
	defer client.Close()

	args := []interface{}{c.Database, c.Username, c.Password, make([]interface{}, 0)}
	var uid int
	if err := client.Call("authenticate", args, &uid); err != nil {
		return 0, classify("authenticate", err)
	}

	c.Uid = uid
	return uid, nil
}

// execute runs one execute_kw call against the object endpoint
func (c *Client) execute(op string, args []interface{}, result interface{}) error {
	client, err := xmlrpc.NewClient(c.ObjectURL, nil)
	if err != nil {
		return classify(op, err)
	}
	defer client.Close()

	if err := client.Call("execute_kw", args, result); err != nil {
		return classify(op, err)
	}
	return nil
}

// Create writes a new document and returns its server-assigned id
func (c *Client) Create(collection string, values map[string]interface{}) (string, error) {
	args := []interface{}{
		c.Database, c.Uid, c.Password,
		collection, "create",
		[]interface{}{values},
	}

	var id string
	if err := c.execute("create "+collection, args, &id); err != nil {
		return "", err
	}
	return id, nil
}

// Update overwrites fields of an existing document. The remote store
// refuses updates of unknown ids with a fault, which surfaces as
// ErrRejected.
func (c *Client) Update(collection, id string, values map[string]interface{}) error {
	args := []interface{}{
		c.Database, c.Uid, c.Password,
		collection, "write",
		[]interface{}{[]string{id}, values},
	}

	var success bool
	if err := c.execute("update "+collection, args, &success); err != nil {
		return err
	}
	if !success {
		return fmt.Errorf("update %s: %w: write returned false", collection, ErrRejected)
	}
	return nil
}

// Delete removes a document
func (c *Client) Delete(collection, id string) error {
	args := []interface{}{
		c.Database, c.Uid, c.Password,
		collection, "unlink",
		[]interface{}{[]string{id}},
	}

	var success bool
	if err := c.execute("delete "+collection, args, &success); err != nil {
		return err
	}
	if !success {
		return fmt.Errorf("delete %s: %w: unlink returned false", collection, ErrRejected)
	}
	return nil
}

// ChangedSince returns up to limit documents with updated_at strictly after
// since, ascending, for delta pulls.
func (c *Client) ChangedSince(collection string, since time.Time, limit int) ([]Document, error) {
	domain := []interface{}{
		[]interface{}{"updated_at", ">", since.UTC().Format(timeLayout)},
	}
	args := []interface{}{
		c.Database, c.Uid, c.Password,
		collection, "search_read",
		[]interface{}{domain},
		map[string]interface{}{
			"order": "updated_at asc",
			"limit": limit,
		},
	}

	var raw []map[string]interface{}
	if err := c.execute("pull "+collection, args, &raw); err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(raw))
	for _, fields := range raw {
		doc, err := parseDocument(collection, fields)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// parseDocument extracts id and updated_at; the remainder stays as payload
func parseDocument(collection string, fields map[string]interface{}) (Document, error) {
	id, _ := fields["id"].(string)
	if id == "" {
		return Document{}, fmt.Errorf("pull %s: %w: document without id", collection, ErrRejected)
	}

	rawTs, _ := fields["updated_at"].(string)
	ts, err := time.ParseInLocation(timeLayout, rawTs, time.UTC)
	if err != nil {
		return Document{}, fmt.Errorf("pull %s: %w: bad updated_at %q", collection, ErrRejected, rawTs)
	}

	payload := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if k == "id" || k == "updated_at" {
			continue
		}
		payload[k] = v
	}
	return Document{ID: id, UpdatedAt: ts, Fields: payload}, nil
}
