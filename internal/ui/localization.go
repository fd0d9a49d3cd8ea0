package ui

import "fmt"

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle          = "app_title"
	KeyAppSubtitle       = "app_subtitle"
	KeyHome              = "home"
	KeyOpenTool          = "open_tool"
	KeySettings          = "settings"
	KeyFile              = "file"
	KeyLanguage          = "language"
	KeyOutputDirectory   = "output_directory"
	KeyMaxParallel       = "max_parallel"
	KeyJPEGQuality       = "jpeg_quality"
	KeyPNGCompression    = "png_compression"
	KeyDPI               = "dpi"
	KeyCollisionPolicy   = "collision_policy"
	KeyAutoReveal        = "auto_reveal"
	KeySave              = "save"
	KeyCancel            = "cancel"
	KeyBrowse            = "browse"
	KeySettingsSaved     = "settings_saved"
	KeyAddFiles          = "add_files"
	KeyAddFolder         = "add_folder"
	KeyClear             = "clear"
	KeyRemove            = "remove"
	KeyConvert           = "convert"
	KeyStop              = "stop"
	KeyReveal            = "reveal"
	KeyOpenResult        = "open_result"
	KeyDropHint          = "drop_hint"
	KeyNoFiles           = "no_files"
	KeySelectionSummary  = "selection_summary"
	KeyWidth             = "width"
	KeyHeight            = "height"
	KeyUnit              = "unit"
	KeyOutputFormat      = "output_format"
	KeyConverting        = "converting"
	KeyConversionDone    = "conversion_done"
	KeyConversionFailed  = "conversion_failed"
	KeyConversionStopped = "conversion_stopped"
	KeySavedTo           = "saved_to"
	KeySkippedFiles      = "skipped_files"
	KeyFilesAdded        = "files_added"
	KeyNoImagesInFolder  = "no_images_in_folder"
	KeyErrorOpeningFile  = "error_opening_file"
	KeyErrorReadingFile  = "error_reading_file"
	KeyErrorSaving       = "error_saving"
	KeyInvalidSize       = "invalid_size"
	KeyAlreadyRunning    = "already_running"

	KeyToolPNGToJPEG      = "tool_png_to_jpeg"
	KeyToolPNGToJPEGDesc  = "tool_png_to_jpeg_desc"
	KeyToolJPEGToPNG      = "tool_jpeg_to_png"
	KeyToolJPEGToPNGDesc  = "tool_jpeg_to_png_desc"
	KeyToolWebPToPNG      = "tool_webp_to_png"
	KeyToolWebPToPNGDesc  = "tool_webp_to_png_desc"
	KeyToolWebPToJPEG     = "tool_webp_to_jpeg"
	KeyToolWebPToJPEGDesc = "tool_webp_to_jpeg_desc"
	KeyToolResize         = "tool_resize"
	KeyToolResizeDesc     = "tool_resize_desc"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" {
		// Use system locale - simplified to English for now
		lang = "en"
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts["en"]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Final fallback - return key itself
	return key
}

// Format returns the localized format string for key applied to args
func (l *Localization) Format(key string, args ...any) string {
	return fmt.Sprintf(l.GetText(key), args...)
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
		"pt": "Português",
	}
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	// English texts
	l.texts["en"] = map[string]string{
		KeyAppTitle:          "Micro-Tools",
		KeyAppSubtitle:       "Simple image tools that run on your computer",
		KeyHome:              "Home",
		KeyOpenTool:          "Open",
		KeySettings:          "Settings",
		KeyFile:              "File",
		KeyLanguage:          "Language",
		KeyOutputDirectory:   "Output Directory",
		KeyMaxParallel:       "Files Converted at Once",
		KeyJPEGQuality:       "JPEG Quality",
		KeyPNGCompression:    "PNG Compression",
		KeyDPI:               "DPI for Centimetres",
		KeyCollisionPolicy:   "Duplicate Names in Archives",
		KeyAutoReveal:        "Show result in file manager",
		KeySave:              "Save",
		KeyCancel:            "Cancel",
		KeyBrowse:            "Browse",
		KeySettingsSaved:     "Settings saved successfully!",
		KeyAddFiles:          "Add files",
		KeyAddFolder:         "Add folder",
		KeyClear:             "Clear",
		KeyRemove:            "Remove",
		KeyConvert:           "Convert",
		KeyStop:              "Stop",
		KeyReveal:            "Show",
		KeyOpenResult:        "Open",
		KeyDropHint:          "Drop images here or use the buttons above",
		KeyNoFiles:           "No files selected",
		KeySelectionSummary:  "%d files · %s",
		KeyWidth:             "Width",
		KeyHeight:            "Height",
		KeyUnit:              "Unit",
		KeyOutputFormat:      "Output format",
		KeyConverting:        "Converting %d of %d...",
		KeyConversionDone:    "Conversion completed",
		KeyConversionFailed:  "Conversion failed",
		KeyConversionStopped: "Conversion stopped",
		KeySavedTo:           "Saved to %s",
		KeySkippedFiles:      "%d files could not be converted",
		KeyFilesAdded:        "%d files added",
		KeyNoImagesInFolder:  "No images found in folder",
		KeyErrorOpeningFile:  "Error opening file",
		KeyErrorReadingFile:  "Error reading file",
		KeyErrorSaving:       "Error saving result",
		KeyInvalidSize:       "Width and height must be positive numbers",
		KeyAlreadyRunning:    "A conversion is already running for this tool",

		KeyToolPNGToJPEG:      "PNG to JPEG",
		KeyToolPNGToJPEGDesc:  "Convert PNG images to JPEG",
		KeyToolJPEGToPNG:      "JPEG to PNG",
		KeyToolJPEGToPNGDesc:  "Convert JPEG images to lossless PNG",
		KeyToolWebPToPNG:      "WebP to PNG",
		KeyToolWebPToPNGDesc:  "Convert WebP images to PNG",
		KeyToolWebPToJPEG:     "WebP to JPEG",
		KeyToolWebPToJPEGDesc: "Convert WebP images to JPEG",
		KeyToolResize:         "Image Resizer",
		KeyToolResizeDesc:     "Resize images to an exact size in pixels or centimetres",
	}

	// Russian texts
	l.texts["ru"] = map[string]string{
		KeyAppTitle:          "Микро-инструменты",
		KeyAppSubtitle:       "Простые инструменты для изображений на вашем компьютере",
		KeyHome:              "Главная",
		KeyOpenTool:          "Открыть",
		KeySettings:          "Настройки",
		KeyFile:              "Файл",
		KeyLanguage:          "Язык",
		KeyOutputDirectory:   "Папка сохранения",
		KeyMaxParallel:       "Файлов одновременно",
		KeyJPEGQuality:       "Качество JPEG",
		KeyPNGCompression:    "Сжатие PNG",
		KeyDPI:               "DPI для сантиметров",
		KeyCollisionPolicy:   "Одинаковые имена в архиве",
		KeyAutoReveal:        "Показать результат в файловом менеджере",
		KeySave:              "Сохранить",
		KeyCancel:            "Отмена",
		KeyBrowse:            "Обзор",
		KeySettingsSaved:     "Настройки успешно сохранены!",
		KeyAddFiles:          "Добавить файлы",
		KeyAddFolder:         "Добавить папку",
		KeyClear:             "Очистить",
		KeyRemove:            "Удалить",
		KeyConvert:           "Конвертировать",
		KeyStop:              "Стоп",
		KeyReveal:            "Показать",
		KeyOpenResult:        "Открыть файл",
		KeyDropHint:          "Перетащите изображения сюда или используйте кнопки выше",
		KeyNoFiles:           "Файлы не выбраны",
		KeySelectionSummary:  "Файлов: %d · %s",
		KeyWidth:             "Ширина",
		KeyHeight:            "Высота",
		KeyUnit:              "Единицы",
		KeyOutputFormat:      "Формат результата",
		KeyConverting:        "Конвертация %d из %d...",
		KeyConversionDone:    "Конвертация завершена",
		KeyConversionFailed:  "Ошибка конвертации",
		KeyConversionStopped: "Конвертация остановлена",
		KeySavedTo:           "Сохранено в %s",
		KeySkippedFiles:      "Не удалось конвертировать файлов: %d",
		KeyFilesAdded:        "Добавлено файлов: %d",
		KeyNoImagesInFolder:  "В папке нет изображений",
		KeyErrorOpeningFile:  "Ошибка открытия файла",
		KeyErrorReadingFile:  "Ошибка чтения файла",
		KeyErrorSaving:       "Ошибка сохранения результата",
		KeyInvalidSize:       "Ширина и высота должны быть положительными числами",
		KeyAlreadyRunning:    "Конвертация для этого инструмента уже идёт",

		KeyToolPNGToJPEG:      "PNG в JPEG",
		KeyToolPNGToJPEGDesc:  "Конвертировать PNG в JPEG",
		KeyToolJPEGToPNG:      "JPEG в PNG",
		KeyToolJPEGToPNGDesc:  "Конвертировать JPEG в PNG без потерь",
		KeyToolWebPToPNG:      "WebP в PNG",
		KeyToolWebPToPNGDesc:  "Конвертировать WebP в PNG",
		KeyToolWebPToJPEG:     "WebP в JPEG",
		KeyToolWebPToJPEGDesc: "Конвертировать WebP в JPEG",
		KeyToolResize:         "Изменение размера",
		KeyToolResizeDesc:     "Изменить размер изображений в пикселях или сантиметрах",
	}

	// Portuguese texts
	l.texts["pt"] = map[string]string{
		KeyAppTitle:          "Micro-Tools",
		KeyAppSubtitle:       "Ferramentas simples de imagem no seu computador",
		KeyHome:              "Início",
		KeyOpenTool:          "Abrir",
		KeySettings:          "Configurações",
		KeyFile:              "Arquivo",
		KeyLanguage:          "Idioma",
		KeyOutputDirectory:   "Diretório de Saída",
		KeyMaxParallel:       "Arquivos Simultâneos",
		KeyJPEGQuality:       "Qualidade JPEG",
		KeyPNGCompression:    "Compressão PNG",
		KeyDPI:               "DPI para Centímetros",
		KeyCollisionPolicy:   "Nomes Duplicados no Arquivo",
		KeyAutoReveal:        "Mostrar resultado no gerenciador de arquivos",
		KeySave:              "Salvar",
		KeyCancel:            "Cancelar",
		KeyBrowse:            "Procurar",
		KeySettingsSaved:     "Configurações salvas com sucesso!",
		KeyAddFiles:          "Adicionar arquivos",
		KeyAddFolder:         "Adicionar pasta",
		KeyClear:             "Limpar",
		KeyRemove:            "Remover",
		KeyConvert:           "Converter",
		KeyStop:              "Parar",
		KeyReveal:            "Mostrar",
		KeyOpenResult:        "Abrir arquivo",
		KeyDropHint:          "Solte imagens aqui ou use os botões acima",
		KeyNoFiles:           "Nenhum arquivo selecionado",
		KeySelectionSummary:  "%d arquivos · %s",
		KeyWidth:             "Largura",
		KeyHeight:            "Altura",
		KeyUnit:              "Unidade",
		KeyOutputFormat:      "Formato de saída",
		KeyConverting:        "Convertendo %d de %d...",
		KeyConversionDone:    "Conversão concluída",
		KeyConversionFailed:  "Falha na conversão",
		KeyConversionStopped: "Conversão interrompida",
		KeySavedTo:           "Salvo em %s",
		KeySkippedFiles:      "%d arquivos não puderam ser convertidos",
		KeyFilesAdded:        "%d arquivos adicionados",
		KeyNoImagesInFolder:  "Nenhuma imagem na pasta",
		KeyErrorOpeningFile:  "Erro ao abrir arquivo",
		KeyErrorReadingFile:  "Erro ao ler arquivo",
		KeyErrorSaving:       "Erro ao salvar resultado",
		KeyInvalidSize:       "Largura e altura devem ser números positivos",
		KeyAlreadyRunning:    "Já existe uma conversão em andamento para esta ferramenta",

		KeyToolPNGToJPEG:      "PNG para JPEG",
		KeyToolPNGToJPEGDesc:  "Converter imagens PNG para JPEG",
		KeyToolJPEGToPNG:      "JPEG para PNG",
		KeyToolJPEGToPNGDesc:  "Converter imagens JPEG para PNG sem perdas",
		KeyToolWebPToPNG:      "WebP para PNG",
		KeyToolWebPToPNGDesc:  "Converter imagens WebP para PNG",
		KeyToolWebPToJPEG:     "WebP para JPEG",
		KeyToolWebPToJPEGDesc: "Converter imagens WebP para JPEG",
		KeyToolResize:         "Redimensionar Imagens",
		KeyToolResizeDesc:     "Redimensionar imagens em pixels ou centímetros",
	}
}
