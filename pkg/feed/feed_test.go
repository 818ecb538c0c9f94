package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const channelFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns:media="http://search.yahoo.com/mrss/" xmlns="http://www.w3.org/2005/Atom">
 <id>yt:channel:UCparl</id>
 <yt:channelId>UCparl</yt:channelId>
 <title>Parliament Channel</title>
 <author>
  <name>Parliament Channel</name>
  <uri>https://www.youtube.com/channel/UCparl</uri>
 </author>
 <entry>
  <id>yt:video:dQw4w9WgXcQ</id>
  <yt:videoId>dQw4w9WgXcQ</yt:videoId>
  <yt:channelId>UCparl</yt:channelId>
  <title>House of Assembly Sitting</title>
  <link rel="alternate" href="https://www.youtube.com/watch?v=dQw4w9WgXcQ"/>
  <author>
   <name>Parliament Channel</name>
  </author>
  <published>2024-07-01T10:00:00+00:00</published>
  <updated>2024-07-02T10:00:00+00:00</updated>
  <media:group>
   <media:title>House of Assembly Sitting</media:title>
   <media:description>Budget debate, day one.</media:description>
   <media:community>
    <media:starRating count="10" average="5.00" min="1" max="5"/>
    <media:statistics views="1234"/>
   </media:community>
  </media:group>
 </entry>
 <entry>
  <id>yt:video:no-link</id>
  <title>Entry without a link</title>
 </entry>
</feed>`

func TestParse(t *testing.T) {
	recs, err := NewImporter().Parse(strings.NewReader(channelFeed))
	require.NoError(t, err)
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", rec["VideoURL"])
	assert.Equal(t, "dQw4w9WgXcQ", rec["video_id"])
	assert.Equal(t, "House of Assembly Sitting", rec["Video_title"])
	assert.Equal(t, "Budget debate, day one.", rec["Description"])
	assert.Equal(t, "Parliament Channel", rec["Channel_Name"])
	assert.Equal(t, "UCparl", rec["Channel_Id"])
	assert.Equal(t, "1234", rec["Views"])
	assert.Equal(t, "2024-07-01T10:00:00Z", rec["published_Date"])
}

func TestParseEmptyFeed(t *testing.T) {
	empty := `<?xml version="1.0"?><feed xmlns="http://www.w3.org/2005/Atom"><title>Empty</title></feed>`

	_, err := NewImporter().Parse(strings.NewReader(empty))
	assert.Error(t, err)
}

func TestParseURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(channelFeed))
	}))
	defer server.Close()

	recs, err := NewImporter().ParseURL(context.Background(), server.URL+"/feeds/videos.xml?channel_id=UCparl")
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestParseURLServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewImporter().ParseURL(context.Background(), server.URL)
	assert.Error(t, err)
}
