package sources

// Bucket is the content bucket an item is filed under in a profile.
type Bucket string

// Content buckets. Every item lands in exactly one.
const (
	BucketNews     Bucket = "news_articles"
	BucketLaunches Bucket = "launches"
	BucketBlog     Bucket = "blog_posts"
	BucketSocial   Bucket = "social_posts"
)

var bucketByCategory = map[Category]Bucket{
	CategoryCodeHost:    BucketLaunches,
	CategoryLaunchBoard: BucketLaunches,
	CategoryRegistry:    BucketLaunches,
	CategoryNews:        BucketNews,
	CategoryOnChain:     BucketNews,
	CategoryBlog:        BucketBlog,
	CategorySocial:      BucketSocial,
	CategoryUnknown:     BucketNews,
}

// BucketFor returns the content bucket for a source label.
func BucketFor(label string) Bucket {
	return bucketByCategory[Classify(label)]
}
