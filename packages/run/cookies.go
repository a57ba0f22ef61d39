package run

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	// The transport decompresses transparently unless the encoding was
	// requested explicitly.
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	}
	return io.ReadAll(reader)
}

// loadCookieFile reads a Netscape-format cookie file and seeds the jar.
// Lines: domain, include-subdomains, path, secure, expires, name, value
// separated by tabs. Blank and # lines are skipped.
func loadCookieFile(jar http.CookieJar, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cookie file %s does not exist", path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			return fmt.Errorf("cannot parse line %d of cookie file %s", lineno, path)
		}
		expires, _ := strconv.ParseInt(fields[4], 10, 64)
		cookie := &http.Cookie{
			Name:    fields[5],
			Value:   fields[6],
			Path:    fields[2],
			Domain:  strings.TrimPrefix(fields[0], "."),
			Secure:  fields[3] == "TRUE",
			Expires: time.Unix(expires, 0),
		}
		scheme := "http"
		if cookie.Secure {
			scheme = "https"
		}
		jar.SetCookies(&neturl.URL{Scheme: scheme, Host: cookie.Domain, Path: cookie.Path}, []*http.Cookie{cookie})
	}
	return scanner.Err()
}

// SeedCookies loads the given cookie file into the client's jar.
func (c *Client) SeedCookies(path string) error {
	return loadCookieFile(c.httpClient.Jar, path)
}

// SaveCookies writes the cookies the jar holds for the visited URLs in
// Netscape format.
func (c *Client) SaveCookies(path string, visited []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create cookie file %s: %w", path, err)
	}
	defer f.Close()

	fmt.Fprintln(f, "# Netscape HTTP Cookie File")
	seen := make(map[string]bool)
	for _, raw := range visited {
		u, err := neturl.Parse(raw)
		if err != nil {
			continue
		}
		for _, cookie := range c.httpClient.Jar.Cookies(u) {
			key := u.Hostname() + "\x00" + cookie.Name
			if seen[key] {
				continue
			}
			seen[key] = true
			secure := "FALSE"
			if cookie.Secure {
				secure = "TRUE"
			}
			fmt.Fprintf(f, "%s\tFALSE\t/\t%s\t%d\t%s\t%s\n",
				u.Hostname(), secure, cookie.Expires.Unix(), cookie.Name, cookie.Value)
		}
	}
	return nil
}
