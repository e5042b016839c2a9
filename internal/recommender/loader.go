package recommender

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

// LoadTable reads the recommendation table from a local file or an
// http(s) URL. Every failure is returned as a *LoadError.
func LoadTable(ctx context.Context, source string, timeout time.Duration, logger *logrus.Logger) (Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}

	var (
		data []byte
		err  error
	)
	if isRemote(source) {
		data, err = fetchRemote(source, timeout)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}

	table, err := ParseTable(data)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}

	logger.WithFields(logrus.Fields{
		"source": source,
		"tags":   len(table),
	}).Info("Loaded recommendation table")

	return table, nil
}

func isRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func fetchRemote(source string, timeout time.Duration) ([]byte, error) {
	c := colly.NewCollector(
		colly.UserAgent("HealthBite-Backend/1.0"),
		colly.AllowURLRevisit(),
	)
	if timeout > 0 {
		c.SetRequestTimeout(timeout)
	}

	var (
		body     []byte
		fetchErr error
	)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			fetchErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
			return
		}
		fetchErr = err
	})

	if err := c.Visit(source); err != nil {
		return nil, err
	}
	c.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	if len(body) == 0 {
		return nil, errors.New("empty response body")
	}
	return body, nil
}
