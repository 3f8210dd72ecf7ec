package ytmusic

// Trimmed-down structs for the parts of the YouTube Music internal API
// responses we actually read. The real payloads are far bigger.

type textRun struct {
	Text               string              `json:"text"`
	NavigationEndpoint *navigationEndpoint `json:"navigationEndpoint,omitempty"`
}

type runs struct {
	Runs []textRun `json:"runs"`
}

type browseEndpoint struct {
	BrowseID string `json:"browseId"`
}

type watchEndpoint struct {
	VideoID string `json:"videoId"`
}

type navigationEndpoint struct {
	BrowseEndpoint *browseEndpoint `json:"browseEndpoint,omitempty"`
	WatchEndpoint  *watchEndpoint  `json:"watchEndpoint,omitempty"`
}

type thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type thumbnailRenderer struct {
	MusicThumbnailRenderer struct {
		Thumbnail struct {
			Thumbnails []thumbnail `json:"thumbnails"`
		} `json:"thumbnail"`
	} `json:"musicThumbnailRenderer"`
}

type flexColumnRenderer struct {
	Text runs `json:"text"`
}

type flexColumn struct {
	MusicResponsiveListItemFlexColumnRenderer flexColumnRenderer `json:"musicResponsiveListItemFlexColumnRenderer"`
}

type playlistItemData struct {
	VideoID string `json:"videoId"`
}

type listItemRenderer struct {
	FlexColumns      []flexColumn       `json:"flexColumns"`
	Thumbnail        *thumbnailRenderer `json:"thumbnail,omitempty"`
	PlaylistItemData *playlistItemData  `json:"playlistItemData,omitempty"`
}

type shelfContent struct {
	MusicResponsiveListItemRenderer *listItemRenderer `json:"musicResponsiveListItemRenderer,omitempty"`
}

type musicShelf struct {
	Title    runs           `json:"title"`
	Contents []shelfContent `json:"contents"`
}

type sectionContent struct {
	MusicShelfRenderer *musicShelf `json:"musicShelfRenderer,omitempty"`
}

type sectionList struct {
	Contents []sectionContent `json:"contents"`
}

type tabbedContent struct {
	SectionListRenderer *sectionList `json:"sectionListRenderer,omitempty"`
}

type tab struct {
	TabRenderer struct {
		Content tabbedContent `json:"content"`
	} `json:"tabRenderer"`
}

type browseResponse struct {
	Contents struct {
		SingleColumnBrowseResultsRenderer *struct {
			Tabs []tab `json:"tabs"`
		} `json:"singleColumnBrowseResultsRenderer,omitempty"`
		TabbedSearchResultsRenderer *struct {
			Tabs []tab `json:"tabs"`
		} `json:"tabbedSearchResultsRenderer,omitempty"`
		SectionListRenderer *sectionList `json:"sectionListRenderer,omitempty"`
	} `json:"contents"`
	Header struct {
		MusicDetailHeaderRenderer *struct {
			Title     runs               `json:"title"`
			Subtitle  runs               `json:"subtitle"`
			Thumbnail *thumbnailRenderer `json:"thumbnail,omitempty"`
		} `json:"musicDetailHeaderRenderer,omitempty"`
	} `json:"header"`
}

// shelves flattens every music shelf in the response, whichever
// top-level renderer carried it
func (r *browseResponse) shelves() []*musicShelf {
	var sections []*sectionList
	if c := r.Contents.SingleColumnBrowseResultsRenderer; c != nil {
		for _, t := range c.Tabs {
			if sl := t.TabRenderer.Content.SectionListRenderer; sl != nil {
				sections = append(sections, sl)
			}
		}
	}
	if c := r.Contents.TabbedSearchResultsRenderer; c != nil {
		for _, t := range c.Tabs {
			if sl := t.TabRenderer.Content.SectionListRenderer; sl != nil {
				sections = append(sections, sl)
			}
		}
	}
	if sl := r.Contents.SectionListRenderer; sl != nil {
		sections = append(sections, sl)
	}

	var shelves []*musicShelf
	for _, sl := range sections {
		for _, sc := range sl.Contents {
			if sc.MusicShelfRenderer != nil {
				shelves = append(shelves, sc.MusicShelfRenderer)
			}
		}
	}
	return shelves
}

func (r runs) text() string {
	var b []byte
	for _, run := range r.Runs {
		b = append(b, run.Text...)
	}
	return string(b)
}
