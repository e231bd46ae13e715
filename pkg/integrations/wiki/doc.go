// Package wiki builds the item catalog from the Old School RuneScape wiki.
//
// [Client.FetchItems] pages through the wiki's bucket API (infobox_item,
// 500 rows per request, ordered by item name) and [Build] turns the raw rows
// into catalog records:
//
//   - rows without an integer item id are dropped (historical or
//     discontinued entries)
//   - names on [SkipList] are dropped
//   - the first row per page_name_sub wins
//   - records are sorted by name
//   - image file names have characters outside [a-zA-Z0-9 ._()-] replaced
//     by underscores to form the local image path
//
// [Client.DownloadImages] fetches the referenced images into a directory,
// skipping files that already exist.
package wiki
