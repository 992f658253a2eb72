package conversation

// Callback data of inline buttons.
const (
	CallbackAcceptTerms = "accept_user_agreement"
	CallbackSkipVacancy = "skip_vacancy_details"
	CallbackPay         = "I_WANNA_PAY"
)

// Commands understood by the bot, without the slash.
const (
	CommandStart        = "start"
	CommandAnalysis     = "analysis"
	CommandAnalyze      = "analyze"
	CommandHelp         = "help"
	CommandSubscription = "subscription"
	CommandPricing      = "pricing"
	CommandBuyPro       = "buy_pro"
	CommandBuyHR        = "buy_hr"
	CommandBuyCover     = "buy_cover"
	CommandCover        = "cover"
)

const (
	textWelcome = "Привет! Ты только что подключился к боту, который сделает твоё резюме идеальным🚀\n\n" +
		"Этот бот на базе ИИ даст конкретные рекомендации, чтобы ты мог прокачать его и адаптировать под несколько вакансий.\n\n" +
		"Давай начнём?"
	textTermsIntro = "Для начала — немного формальностей. Чтобы мы могли работать с твоим резюме, нужно твоё согласие на обработку персональных данных. Без этого никак."
	textTermsLink  = "Пользовательское соглашение: %s"
	textPrivacy    = "Обработка персональных данных: %s"
	buttonAccept   = "✅Принять пользовательское соглашение!"

	textWelcomeBack     = "С возвращением! Активируйте команду /analysis для анализа резюме."
	textAlreadyAccepted = "Пользовательское соглашение уже принято.\nПожалуйста, используйте команду /analysis для анализа резюме."
	textAccepted        = "Соглашение принято!"
	textTermsRequired   = "Пожалуйста, примите соглашение по кнопке выше перед продолжением использования бота"
	textUseStart        = "Пожалуйста, используйте команду /start чтобы принять пользовательское соглашение."
	textUseAnalysis     = "Пожалуйста, используйте команду /analysis для анализа резюме."

	textSendResume = "Пришли своё резюме в формате Word, PDF или TXT. (выгрузка с HH тоже подойдёт)"
	textDemoIntro  = "Давай я покажу, как работает наш анализ резюме и насколько круто.\n" + textSendResume
	textWaitResume = "Пожалуйста, отправьте файл своего резюме в PDF, DOCX или TXT формате."

	textReading   = "Читаем файл..."
	textChecking  = "Проверяем файл..."
	textAnalyzing = "Анализируем резюме...\nЭто может занять несколько минут."

	textExtractFailed = "Не удалось извлечь текст из файла. Пожалуйста, убедитесь, что это PDF или DOCX с текстом. Или обратитесь в поддержку."
	textTooLarge      = "Файл слишком большой. Максимальный размер: %d МБ."
	textUnsupported   = "Этот формат не поддерживается. Пришлите PDF, DOCX или TXT."
	textNotResume     = "Похоже, что это не резюме. Пожалуйста, пришлите файл с резюме."
	textNotVacancy    = "Похоже, что это не описание вакансии. Пришлите описание вакансии или нажмите кнопку ниже, чтобы продолжить без него."
	textReason        = "\n\nПричина: %s"

	textAskVacancy  = "Отлично! Теперь пришли описание вакансии, под которую хочешь адаптировать резюме: файлом или текстом.\nЕсли вакансии нет, нажми кнопку ниже."
	buttonSkip      = "⏩ Без описания вакансии!"
	textSkipped     = "Продолжаем без описания вакансии."
	textLostState   = "Произошла ошибка. Пожалуйста, начните анализ заново командой /analysis."
	textStaleButton = "Кнопка устарела."

	textAnalysisFailed = "Произошла ошибка при анализе резюме. Пожалуйста, попробуйте позже или обратитесь в поддержку."
	textRawIntro       = "Не удалось корректно проанализировать резюме. Вот что вернула модель (возможно, формат ответа не соответствует ожидаемому):"
	textDemoOver       = "На этом демонстрация окончена.\n\nЕсли хотите узнать, как наш бот отреагирует на новое резюме, купите подписку. Команда /subscription"
	textPaywall        = "Ваша оценка: %d/100. Полный отчёт и конкретные рекомендации доступны по подписке. Команда: /subscription"
	textNoEntitlement  = "Бесплатный полный отчёт уже использован. Пришлите резюме, и мы покажем базовую оценку. Полный отчёт доступен по подписке: /subscription"
	textInternalError  = "Что-то пошло не так. Попробуйте ещё раз позже или обратитесь в поддержку."

	headerScore    = "*📊 Оценка резюме: %d/100*"
	headerStrength = "*✅ Сильные стороны*"
	headerProblems = "*⚠️ Проблемы*"
	headerActions  = "*🛠 Что сделать*"

	textHelp = "Команды:\n" +
		"/start — начать и принять соглашение\n" +
		"/analysis — анализ резюме\n" +
		"/subscription — подписка\n" +
		"/pricing — тарифы\n" +
		"/cover <вакансия> — сопроводительное письмо\n" +
		"/help — эта справка"

	textPaymentsDisabled  = "Платежи временно недоступны. Попробуйте позже."
	textSubscriptionOffer = "Мы предлагаем оформить подписку на %d дней.\nСтоимость: %s ₽.\nНажмите кнопку, чтобы перейти к оплате."
	buttonPay             = "👛Оплатить %s ₽"
	textInvoiceFailed     = "Не удалось инициировать оплату. Попробуйте позже или обратитесь в поддержку."
	textPricing           = "Тарифы:\n" +
		"• Подписка на %d дней: %s %s — /subscription\n" +
		"• PRO на %d дней: %s %s — /buy_pro\n" +
		"• Разбор с HR: %s %s — /buy_hr\n" +
		"• Пакет сопроводительных: %s %s — /buy_cover"
	textPaidSubscription = "Оплата %s %s прошла успешно! Подписка активна до %s."
	textPaidPro          = "Готово: PRO активирован до %s. Присылайте резюме для полного отчёта."
	textPaidHR           = "Оплата принята. HR свяжется с вами в этом чате."
	textPaidCover        = "Пакет сопроводительных активирован. Используйте команду /cover."
	textPaymentFailed    = "Не удалось зачислить оплату. Обратитесь в поддержку, мы всё проверим."

	textCoverNeedsPack   = "Для генерации сопроводительных нужен активный пакет или подписка. Команда: /buy_cover или /subscription."
	textCoverNeedsResume = "Сначала отправьте резюме через /analysis, затем вызовите /cover."
	textCoverUsage       = "Пришлите команду так: /cover Описание вакансии или её ключевые требования."
	textCoverFailed      = "Не удалось сгенерировать письмо. Попробуйте позже."
	textCoverEmpty       = "Модель вернула пустое письмо. Попробуйте переформулировать вакансию."
)
