package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
)

// JobOffer is a France Travail offer as relayed by the backend. Only the
// fields the client shows are decoded; the rest is ignored.
type JobOffer struct {
	ID           string       `json:"id"`
	Intitule     string       `json:"intitule"`
	Description  string       `json:"description,omitempty"`
	DateCreation string       `json:"dateCreation,omitempty"`
	TypeContrat  string       `json:"typeContrat,omitempty"`
	Entreprise   *JobCompany  `json:"entreprise,omitempty"`
	LieuTravail  *JobLocation `json:"lieuTravail,omitempty"`
	OrigineOffre *JobOrigin   `json:"origineOffre,omitempty"`
}

type JobCompany struct {
	Nom string `json:"nom"`
}

type JobLocation struct {
	Libelle string `json:"libelle"`
}

type JobOrigin struct {
	URLOrigine string `json:"urlOrigine"`
}

// SearchQuery is one query the smart search derived from the resume.
type SearchQuery struct {
	Type     string `json:"type"`
	Keywords string `json:"keywords"`
	Location string `json:"location,omitempty"`
}

type SmartSearchParams struct {
	Keywords      string        `json:"keywords"`
	Location      string        `json:"location"`
	SearchQueries []SearchQuery `json:"search_queries"`
}

// JobSearchResult is the answer of both search endpoints. Message without
// Resultats signals the smart search could not run.
type JobSearchResult struct {
	Resultats         []JobOffer         `json:"resultats"`
	Message           string             `json:"message,omitempty"`
	SmartSearchParams *SmartSearchParams `json:"smart_search_params,omitempty"`
}

// JobStats is passed through from the aggregator without a fixed schema.
type JobStats = json.RawMessage

// SearchJobs runs a keyword/location search. Like the web client it does not
// reject non-2xx answers outright: the body is decoded either way.
func (c *Client) SearchJobs(ctx context.Context, keywords, location string) (*JobSearchResult, error) {
	params := url.Values{}
	if keywords != "" {
		params.Set("keywords", keywords)
	}
	if location != "" {
		params.Set("location", location)
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/jobs/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	body, err := c.do(req, failedTo("search jobs"))
	var apiErr *Error
	if err != nil && !errors.As(err, &apiErr) {
		return nil, err
	}

	var out JobSearchResult
	if decodeErr := decode(body, &out); decodeErr != nil {
		if err != nil {
			return nil, err
		}
		return nil, decodeErr
	}
	return &out, nil
}

// SmartSearchJobs searches with parameters derived from the uploaded resume.
func (c *Client) SmartSearchJobs(ctx context.Context) (*JobSearchResult, error) {
	var out JobSearchResult
	if err := c.postJSON(ctx, "/jobs/smart-search", nil, failedTo("perform smart search"), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetJobStats returns market statistics for a ROME code and area.
func (c *Client) GetJobStats(ctx context.Context, codeRome, codeGeographique string) (JobStats, error) {
	var out json.RawMessage
	path := "/jobs/stats?" + statsQuery(codeRome, codeGeographique)
	if err := c.getJSON(ctx, path, failedTo("get job stats"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAccessStats returns access-to-employment statistics.
func (c *Client) GetAccessStats(ctx context.Context, codeRome, codeGeographique string) (JobStats, error) {
	var out json.RawMessage
	path := "/jobs/access-stats?" + statsQuery(codeRome, codeGeographique)
	if err := c.getJSON(ctx, path, failedTo("fetch access stats"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func statsQuery(codeRome, codeGeographique string) string {
	params := url.Values{}
	if codeRome != "" {
		params.Set("code_rome", codeRome)
	}
	if codeGeographique != "" {
		params.Set("code_geographique", codeGeographique)
	}
	return params.Encode()
}
