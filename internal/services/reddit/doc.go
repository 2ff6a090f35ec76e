// Package reddit acquires candidate posts from Reddit's JSON listing API.
//
// With client credentials configured the client authenticates through the
// OAuth client-credentials grant and reads from the OAuth host; otherwise it
// reads the public listing endpoints anonymously. Requests are paced by a
// fixed interval and a subreddit that fails is logged and skipped.
package reddit
