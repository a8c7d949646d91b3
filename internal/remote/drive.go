package remote

import (
	"context"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/driftlabs/driftsync/internal/retry"
)

const folderMimeType = "application/vnd.google-apps.folder"

// Credentials carries an OAuth token for the Drive backend.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// DriveClient reads tree snapshots from Google Drive.
type DriveClient struct {
	svc *drive.Service
}

// NewDriveClient builds a Drive-backed client from stored credentials.
func NewDriveClient(ctx context.Context, creds Credentials) (*DriveClient, error) {
	token := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		Expiry:       creds.Expiry,
	}
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	svc, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, err
	}
	return &DriveClient{svc: svc}, nil
}

// NewDriveClientFromService wraps an already configured Drive service.
func NewDriveClientFromService(svc *drive.Service) *DriveClient {
	return &DriveClient{svc: svc}
}

// Tree walks the folder hierarchy below rootID breadth-first and returns
// the snapshot.
func (c *DriveClient) Tree(ctx context.Context, rootID string) (*Node, error) {
	root := &Node{ID: rootID, IsDir: true}
	queue := []*Node{root}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		files, err := c.listChildren(ctx, node.ID)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			child := node.AddChild(&Node{
				ID:    f.Id,
				Name:  f.Name,
				IsDir: f.MimeType == folderMimeType,
				Size:  f.Size,
				MTime: modTime(f.ModifiedTime),
			})
			if child.IsDir {
				queue = append(queue, child)
			}
		}
	}

	return root, nil
}

func (c *DriveClient) listChildren(ctx context.Context, parentID string) ([]*drive.File, error) {
	query := "'" + parentID + "' in parents and trashed = false"
	call := c.svc.Files.List().Q(query)
	call = call.Fields("nextPageToken,files(id,name,mimeType,size,modifiedTime)")

	var results []*drive.File
	for {
		var list *drive.FileList
		err := retry.WithTransient(ctx, retry.RemoteDefaults(), func() error {
			var doErr error
			list, doErr = call.Context(ctx).Do()
			return doErr
		}, isRetryable, "drive files list")
		if err != nil {
			return nil, err
		}
		results = append(results, list.Files...)
		if list.NextPageToken == "" {
			break
		}
		call = call.PageToken(list.NextPageToken)
	}
	return results, nil
}

// isRetryable checks if an error is retryable
func isRetryable(err error) bool {
	if apiErr, ok := err.(*googleapi.Error); ok {
		switch apiErr.Code {
		case 429, 500, 502, 503, 504:
			return true
		}
	}
	return false
}

func modTime(value string) int64 {
	if value == "" {
		return 0
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return 0
	}
	return t.Unix()
}
