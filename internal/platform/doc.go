package platform

// Package platform contains OS/platform integration and external tooling glue:
// filesystem helpers, the yt-dlp backend adapter, ID3 tagging, and OS reveal.
