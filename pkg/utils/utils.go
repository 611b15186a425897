package utils

import (
	"crypto/md5"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
)

func HashString(input string) string {
	hash := md5.Sum([]byte(input))
	return fmt.Sprintf("%x", hash)
}

// ProductNameFromURL extracts the product slug from an Amazon product
// URL: the first path segment below the root ("/Sneaker-X/dp/B0..." ->
// "Sneaker-X").
func ProductNameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	p := path.Clean(parsed.Path)
	if p == "/" || p == "." {
		return ""
	}
	for path.Dir(p) != "/" && path.Dir(p) != "." && path.Dir(p) != p {
		p = path.Dir(p)
	}
	return strings.TrimPrefix(p, "/")
}

// RatingFromString parses strings like "4.0 out of 5 stars" into 4.0.
// Unparseable input maps to 0.
func RatingFromString(rating string) float64 {
	fields := strings.Fields(rating)
	if len(fields) == 0 {
		return 0.0
	}

	value, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0.0
	}
	return value
}

// OrdinalFromLabel parses sentiment labels like "4 stars" into 4.
// Returns 0 when the label carries no leading integer.
func OrdinalFromLabel(label string) int {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return 0
	}

	value, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return value
}
