package newsroom

import (
	"encoding/json"
)

// SocialMediaPost is one post variant for a platform
type SocialMediaPost struct {
	// Platform is the social network the post is written for
	Platform string `json:"platform" jsonschema:"title=platform,description=Social media platform the post is written for such as Twitter or LinkedIn." validate:"required"`
	// Content is the post text
	Content string `json:"content" jsonschema:"title=content,description=The post text ready to publish." validate:"required"`
}

// ContentOutput is the final output of the newsroom crew
type ContentOutput struct {
	// Article is the final article in markdown
	Article string `json:"article" jsonschema:"title=article,description=The final article in markdown." validate:"required"`
	// SocialMediaPosts are the platform specific posts
	SocialMediaPosts []SocialMediaPost `json:"social_media_posts" jsonschema:"title=social_media_posts,description=The final social media posts one per platform." validate:"required,min=1,dive"`
}

func (o ContentOutput) String() string {
	bs, _ := json.Marshal(o)
	return string(bs)
}
