// Package insideairbnb discovers and downloads the public Inside Airbnb
// dataset archives.
//
// Client scrapes the dataset listing page for per-city listings and reviews
// archives and downloads them, decompressed, into a
// <country>/<region>/<city>/<date>/ tree. All requests share one rate
// limiter.
package insideairbnb
