package documents

import (
	"time"

	"docvault-backend/internal/shared/storage/object"
	"docvault-backend/internal/tokens"
)

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	DocumentID           int64      `json:"documentId"`
	Name                 string     `json:"name,omitempty"`
	FileName             string     `json:"fileName"`
	FileType             string     `json:"fileType"`
	UploadedAt           time.Time  `json:"uploadedAt"`
	LastModifiedAt       time.Time  `json:"lastModifiedAt"`
	DownloadCount        int64      `json:"downloadCount"`
	AccessToken          string     `json:"accessToken,omitempty"`
	AccessTokenExpiresAt *time.Time `json:"accessTokenExpiresAt,omitempty"`
}

func toResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		DocumentID:           doc.ID,
		Name:                 doc.Name,
		FileName:             doc.FileName,
		FileType:             doc.FileType,
		UploadedAt:           doc.UploadedAt,
		LastModifiedAt:       doc.LastModifiedAt,
		DownloadCount:        doc.DownloadCount,
		AccessToken:          doc.AccessToken,
		AccessTokenExpiresAt: doc.AccessTokenExpiresAt,
	}
}

// LinkResponse carries one signed URL.
type LinkResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func toLinkResponse(signed object.SignedURL) LinkResponse {
	return LinkResponse{URL: signed.URL, ExpiresAt: signed.ExpiresAt}
}

// GrantResponse carries a freshly minted access-token/share-link pair.
type GrantResponse struct {
	AccessToken          string    `json:"accessToken"`
	AccessTokenExpiresAt time.Time `json:"accessTokenExpiresAt"`
	ShareLink            string    `json:"shareLink"`
	ShareLinkExpiresAt   time.Time `json:"shareLinkExpiresAt"`
}

func toGrantResponse(grant tokens.Grant) GrantResponse {
	return GrantResponse{
		AccessToken:          grant.Access.URL,
		AccessTokenExpiresAt: grant.Access.ExpiresAt,
		ShareLink:            grant.Share.URL,
		ShareLinkExpiresAt:   grant.Share.ExpiresAt,
	}
}
