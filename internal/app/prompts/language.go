package prompts

import "fmt"

// Messages are the fixed user-facing strings of one language.
type Messages struct {
	Greeting           string
	RouterError        string
	SearchFailed       string
	CanvasFailed       string
	ImageFailed        string
	ImageDefaultPrompt string
	CanvasDoneHTML     string
	CanvasDoneMarkdown string
	VisualizeRequest   string
	VisualizeTitle     string
	UntitledSource     string
	SourceLabel        string

	quoteTemplate     string
	visualizeTemplate string
	classifyTemplate  string
}

// Language pairs the name used inside prompts with the message catalog.
type Language struct {
	Code     string
	Name     string
	Messages Messages
}

var vietnamese = Language{
	Code: "vi",
	Name: "Vietnamese",
	Messages: Messages{
		Greeting:           "Xin chào! Tôi có thể giúp gì cho bạn hôm nay? Hãy yêu cầu tôi tạo một thành phần UI, vẽ biểu đồ, hoặc chỉ trò chuyện.",
		RouterError:        "Xin lỗi, tôi đã gặp lỗi. Vui lòng thử lại.",
		SearchFailed:       "Xin lỗi, quá trình tìm kiếm của tôi đã thất bại. Vui lòng thử lại.",
		CanvasFailed:       "Xin lỗi, tôi không thể tạo nội dung trên canvas. Vui lòng thử lại.",
		ImageFailed:        "Xin lỗi, tôi không thể phân tích hình ảnh. Vui lòng thử lại.",
		ImageDefaultPrompt: "Mô tả chi tiết về hình ảnh này.",
		CanvasDoneHTML:     "Tôi đã tạo xong bản trực quan hóa trên canvas cho bạn.",
		CanvasDoneMarkdown: "Tôi đã tạo xong tài liệu trên canvas cho bạn.",
		VisualizeRequest:   "Hãy trực quan hóa bản tóm tắt này cho tôi.",
		VisualizeTitle:     "Trực quan hóa dữ liệu",
		UntitledSource:     "Không có tiêu đề",
		SourceLabel:        "Nguồn",

		quoteTemplate:     "Dựa vào đoạn trích sau:\n\n> %s\n\nHãy trả lời câu hỏi sau: %s",
		visualizeTemplate: "Dựa trên bản tóm tắt sau, hãy tạo một bảng điều khiển (dashboard) hấp dẫn và nhiều thông tin bằng cách sử dụng biểu đồ, dòng thời gian và các yếu tố trực quan khác để thể hiện thông tin chính. Hãy làm cho nó trông giống như một báo cáo chuyên nghiệp. Tóm tắt:\n\n%s",
		classifyTemplate:  "Phân tích yêu cầu sau của người dùng: \"%s\"",
	},
}

var english = Language{
	Code: "en",
	Name: "English",
	Messages: Messages{
		Greeting:           "Hello! How can I help you today? Ask me to build a UI component, draw a chart, or just chat.",
		RouterError:        "Sorry, I ran into an error. Please try again.",
		SearchFailed:       "Sorry, my search failed. Please try again.",
		CanvasFailed:       "Sorry, I couldn't create the canvas content. Please try again.",
		ImageFailed:        "Sorry, I couldn't analyze the image. Please try again.",
		ImageDefaultPrompt: "Describe this image in detail.",
		CanvasDoneHTML:     "I've finished the visualization on the canvas for you.",
		CanvasDoneMarkdown: "I've finished the document on the canvas for you.",
		VisualizeRequest:   "Please visualize this summary for me.",
		VisualizeTitle:     "Data visualization",
		UntitledSource:     "Untitled",
		SourceLabel:        "Source",

		quoteTemplate:     "Based on the following excerpt:\n\n> %s\n\nAnswer this question: %s",
		visualizeTemplate: "Based on the following summary, build an attractive, information-rich dashboard using charts, timelines and other visual elements to present the key information. Make it look like a professional report. Summary:\n\n%s",
		classifyTemplate:  "Analyze the following user request: \"%s\"",
	},
}

// ForCode returns the language for code, defaulting to Vietnamese.
func ForCode(code string) Language {
	if code == english.Code {
		return english
	}
	return vietnamese
}

// Quote wraps a question with a quoted excerpt the user selected.
func (m Messages) Quote(excerpt, question string) string {
	return fmt.Sprintf(m.quoteTemplate, excerpt, question)
}

// VisualizePrompt asks for a dashboard built from a search summary.
func (m Messages) VisualizePrompt(summary string) string {
	return fmt.Sprintf(m.visualizeTemplate, summary)
}

// ClassifyPrompt wraps a canvas request for the sub-router.
func (m Messages) ClassifyPrompt(request string) string {
	return fmt.Sprintf(m.classifyTemplate, request)
}

// CanvasDone is the completion line for a finished artifact of the given kind.
func (m Messages) CanvasDone(html bool) string {
	if html {
		return m.CanvasDoneHTML
	}
	return m.CanvasDoneMarkdown
}
