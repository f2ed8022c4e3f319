package report

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
)

// BlobArchiver copies rendered reports into an Azure Blob container.
// Authentication uses the default credential chain; the zero value is
// disabled.
type BlobArchiver struct {
	ContainerURL string
}

// Enabled reports whether a container is configured.
func (b BlobArchiver) Enabled() bool { return b.ContainerURL != "" }

// Archive uploads the report HTML under the given blob name and returns
// the blob URL.
func (b BlobArchiver) Archive(ctx context.Context, name, html string) (string, error) {
	if !b.Enabled() {
		return "", fmt.Errorf("report blob container not configured")
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return "", fmt.Errorf("build azure credential: %w", err)
	}

	cc, err := container.NewClient(b.ContainerURL, cred, nil)
	if err != nil {
		return "", fmt.Errorf("open blob container: %w", err)
	}

	bc := cc.NewBlockBlobClient(name)
	_, err = bc.UploadBuffer(ctx, []byte(html), &blockblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: to.Ptr("text/html; charset=utf-8"),
		},
	})
	if err != nil {
		return "", fmt.Errorf("upload report blob: %w", err)
	}
	return bc.URL(), nil
}
